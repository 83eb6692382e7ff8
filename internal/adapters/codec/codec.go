// Package codec serializes the grade calculator document for persistence,
// export and import.
//
// JSON is the canonical format and the one used by the persistence store;
// YAML is offered as an alternative export format. Both decode leniently:
// numeric fields accept numbers, numeric strings or anything else (read as 0).
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/upg/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a user supplied format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
}

// FormatFromFilename picks a format from a file extension, defaulting to JSON.
func FormatFromFilename(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Encode serializes the state. JSON output is indented by two spaces.
func Encode(s *model.State, f Format) ([]byte, error) {
	doc := toWire(s)
	switch f {
	case FormatJSON, "":
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return out, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%q: %w", f, ErrUnsupportedFormat)
	}
}

// Decode parses a document. Input whose top level is not an object with an
// array-valued "subjects" field fails with ErrMalformedDocument. Missing
// selectedSubjectId, theme and view are defaulted.
func Decode(data []byte, f Format) (*model.State, error) {
	var doc wireState
	switch f {
	case FormatJSON, "":
		if err := checkJSONShape(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	case FormatYAML:
		if err := checkYAMLShape(data); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", f, ErrUnsupportedFormat)
	}
	return fromWire(&doc), nil
}

func checkJSONShape(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return fmt.Errorf("%w: top level must be an object", ErrMalformedDocument)
	}
	raw, ok := top["subjects"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return fmt.Errorf("%w: subjects must be an array", ErrMalformedDocument)
	}
	return nil
}

func checkYAMLShape(data []byte) error {
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil || top == nil {
		return fmt.Errorf("%w: top level must be a mapping", ErrMalformedDocument)
	}
	if _, ok := top["subjects"].([]any); !ok {
		return fmt.Errorf("%w: subjects must be a sequence", ErrMalformedDocument)
	}
	return nil
}
