package alignment

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
	"github.com/Sumatoshi-tech/tsalign/pkg/persist"
)

type runDocument struct {
	Count          int    `yaml:"count"`
	Type           string `yaml:"type"`
	Secondary      string `yaml:"secondary,omitempty"`
	FirstOffset    int64  `yaml:"first_offset,omitempty"`
	AntiPrimaryGap int64  `yaml:"anti_primary_gap,omitempty"`
	DeltaReference int64  `yaml:"delta_reference,omitempty"`
	DeltaQuery     int64  `yaml:"delta_query,omitempty"`
}

type document struct {
	Reference       string     `yaml:"reference"`
	Query           string     `yaml:"query"`
	Cost            cost.Cost  `yaml:"cost"`
	CostPerBase     float64    `yaml:"cost_per_base"`
	TemplateSwitch  int        `yaml:"template_switches"`
	DurationSeconds float64    `yaml:"duration_seconds"`
	Statistics      Statistics `yaml:"statistics"`
	Operations      []Run      `yaml:"operations"`
}

// MarshalYAML implements yaml.Marshaler.
func (r Run) MarshalYAML() (any, error) {
	doc := runDocument{
		Count:          r.Count,
		Type:           r.Type.Kind.String(),
		FirstOffset:    r.Type.FirstOffset,
		AntiPrimaryGap: r.Type.AntiPrimaryGap,
		DeltaReference: r.Type.DeltaReference,
		DeltaQuery:     r.Type.DeltaQuery,
	}

	if r.Type.Kind == TemplateSwitchEntrance {
		doc.Secondary = r.Type.Secondary.String()
	}

	return doc, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Run) UnmarshalYAML(value *yaml.Node) error {
	var doc runDocument

	err := value.Decode(&doc)
	if err != nil {
		return err
	}

	kind, err := ParseKind(doc.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	if doc.Count <= 0 {
		return fmt.Errorf("line %d: run count must be positive, got %d", value.Line, doc.Count)
	}

	t := Type{
		Kind:           kind,
		FirstOffset:    doc.FirstOffset,
		AntiPrimaryGap: doc.AntiPrimaryGap,
		DeltaReference: doc.DeltaReference,
		DeltaQuery:     doc.DeltaQuery,
	}

	if kind == TemplateSwitchEntrance {
		t.Secondary, err = ParseSecondary(doc.Secondary)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
	}

	*r = Run{Count: doc.Count, Type: t}

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a *Alignment) MarshalYAML() (any, error) {
	return document{
		Reference:       a.ReferenceName,
		Query:           a.QueryName,
		Cost:            a.TotalCost,
		CostPerBase:     a.CostPerBase(),
		TemplateSwitch:  a.TemplateSwitches(),
		DurationSeconds: a.Statistics.Duration.Seconds(),
		Statistics:      a.Statistics,
		Operations:      a.Operations,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Alignment) UnmarshalYAML(value *yaml.Node) error {
	var raw document

	err := value.Decode(&raw)
	if err != nil {
		return err
	}

	stats := raw.Statistics
	stats.Duration = time.Duration(raw.DurationSeconds * float64(time.Second))

	*a = Alignment{
		ReferenceName: raw.Reference,
		QueryName:     raw.Query,
		TotalCost:     raw.Cost,
		Operations:    raw.Operations,
		Statistics:    stats,
	}

	return nil
}

// WriteFile saves the alignment as YAML, LZ4-compressed when path ends in ".lz4".
func (a *Alignment) WriteFile(path string) error {
	return persist.SaveFile(path, a)
}

// ReadFile loads an alignment written by WriteFile.
func ReadFile(path string) (*Alignment, error) {
	var a Alignment

	err := persist.LoadFile(path, &a)
	if err != nil {
		return nil, err
	}

	return &a, nil
}
