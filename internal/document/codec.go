package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inamate/shapekit/internal/typeid"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file name or a content type. Anything
// not recognizably YAML is JSON.
func FormatFor(nameOrContentType string) Format {
	s := strings.ToLower(nameOrContentType)
	switch {
	case strings.HasSuffix(s, ".yaml"), strings.HasSuffix(s, ".yml"), strings.Contains(s, "yaml"):
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a document, assigns ids to unnamed shapes and validates it.
func Decode(data []byte, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidDocument, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}

	if doc.Version == 0 {
		doc.Version = 1
	}
	for i := range doc.Shapes {
		if doc.Shapes[i].ID == "" {
			doc.Shapes[i].ID = typeid.NewShapeID()
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func Encode(doc *Document, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("unknown document format %q", f)
}

// ReadFile decodes a document file, choosing the format by extension.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, FormatFor(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
