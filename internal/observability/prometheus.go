package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// textfileExporter collects OTel metrics into a private Prometheus registry
// and writes them in the node_exporter textfile format.
type textfileExporter struct {
	registry *prometheus.Registry
	reader   sdkmetric.Reader
	path     string
}

func newTextfileExporter(path string) (*textfileExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &textfileExporter{registry: registry, reader: exporter, path: path}, nil
}

// write replaces the textfile atomically with the current metric values.
func (e *textfileExporter) write() error {
	err := prometheus.WriteToTextfile(e.path, e.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
