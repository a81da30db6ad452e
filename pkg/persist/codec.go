// Package persist provides codec-based file persistence for result documents.
package persist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"
)

// File extensions for supported codecs.
const (
	yamlExtension = ".yaml"
	lz4Extension  = ".lz4"
)

// yamlIndent is the indentation of emitted YAML documents.
const yamlIndent = 2

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g., ".yaml", ".yaml.lz4").
	Extension() string
}

// YAMLCodec implements Codec using YAML documents.
type YAMLCodec struct{}

// NewYAMLCodec creates a YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Encode implements Codec.Encode using yaml.v3.
func (c *YAMLCodec) Encode(w io.Writer, state any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using yaml.v3.
func (c *YAMLCodec) Decode(r io.Reader, state any) error {
	err := yaml.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}

// Extension implements Codec.Extension for YAML files.
func (c *YAMLCodec) Extension() string {
	return yamlExtension
}

// LZ4Codec compresses the output of another codec with the LZ4 frame format.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec wraps inner with LZ4 frame compression.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.Encode.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, state)
	if err != nil {
		return err
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 flush: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	return c.Inner.Decode(lz4.NewReader(r), state)
}

// Extension implements Codec.Extension.
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + lz4Extension
}

// CodecForPath selects YAML, LZ4-compressed when path ends in ".lz4".
func CodecForPath(path string) Codec {
	if strings.HasSuffix(path, lz4Extension) {
		return NewLZ4Codec(NewYAMLCodec())
	}

	return NewYAMLCodec()
}

// SaveFile writes state to path with the codec chosen by CodecForPath.
// The document is written to a temporary file in the same directory and
// renamed over path, so readers never see a partial file.
func SaveFile(path string, state any) (err error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	tmpPath := file.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	encodeErr := CodecForPath(path).Encode(file, state)
	closeErr := file.Close()

	if encodeErr != nil {
		return fmt.Errorf("encode state: %w", encodeErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close state file: %w", closeErr)
	}

	err = os.Rename(tmpPath, path)
	if err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// LoadFile reads state from path with the codec chosen by CodecForPath.
// The state parameter must be a pointer.
func LoadFile(path string, state any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = CodecForPath(path).Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}
