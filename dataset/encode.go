package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Encoding selects a dataset file format
type Encoding string

const (
	EncodingJSON    Encoding = "json"
	EncodingYAML    Encoding = "yaml"
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding resolves an encoding name
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return EncodingJSON, nil
	case "yaml", "yml":
		return EncodingYAML, nil
	case "msgpack", "mp", "msgp":
		return EncodingMsgpack, nil
	}
	return "", fmt.Errorf("unknown dataset format %q (want json, yaml or msgpack)", name)
}

// EncodingFromPath picks an encoding from a file extension, defaulting to msgpack
func EncodingFromPath(path string) Encoding {
	if enc, err := ParseEncoding(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return enc
	}
	return EncodingMsgpack
}

// Encode writes a dataset in the given encoding
func Encode(w io.Writer, ds *Dataset, enc Encoding) error {
	switch enc {
	case EncodingJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(ds)
	case EncodingYAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(ds); err != nil {
			return err
		}
		return e.Close()
	case EncodingMsgpack:
		return msgpack.NewEncoder(w).Encode(ds)
	}
	return fmt.Errorf("unknown dataset format %q", enc)
}

// Decode reads a dataset in the given encoding and validates it
func Decode(r io.Reader, enc Encoding) (*Dataset, error) {
	var ds Dataset
	var err error

	switch enc {
	case EncodingJSON:
		err = json.NewDecoder(r).Decode(&ds)
	case EncodingYAML:
		err = yaml.NewDecoder(r).Decode(&ds)
	case EncodingMsgpack:
		err = msgpack.NewDecoder(r).Decode(&ds)
	default:
		return nil, fmt.Errorf("unknown dataset format %q", enc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s dataset: %w", enc, err)
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// WriteFile encodes a dataset to path. An empty encoding is taken from
// the extension.
func WriteFile(path string, ds *Dataset, enc Encoding) error {
	if enc == "" {
		enc = EncodingFromPath(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, ds, enc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SniffEncoding recognizes JSON and msgpack datasets by their first byte.
// Anything else reports fallback.
func SniffEncoding(data []byte, fallback Encoding) Encoding {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fallback
	}

	switch b := trimmed[0]; {
	case b == '{':
		return EncodingJSON
	case b >= 0x80 && b <= 0x8f, b == 0xde, b == 0xdf: // fixmap, map16, map32
		return EncodingMsgpack
	}
	return fallback
}

// ReadFile decodes a dataset. The encoding is sniffed from the content,
// falling back to the extension, so a file written with an explicit
// format under another extension still reads.
func ReadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(bytes.NewReader(data), SniffEncoding(data, EncodingFromPath(path)))
}
