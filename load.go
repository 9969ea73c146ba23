// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a graph or payload document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatForPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		return json.NewDecoder(r).Decode(v)
	case FormatYAML:
		return yaml.NewDecoder(r).Decode(v)
	default:
		panic("invalid document format")
	}
}

// DecodeGraph reads a dependency graph document.
func DecodeGraph(r io.Reader, format Format) (Graph, error) {
	var g Graph
	if err := decode(r, format, &g); err != nil {
		return Graph{}, fmt.Errorf("decode dependency graph: %w", err)
	}
	return g, nil
}

// DecodePayload reads a payload document.
func DecodePayload(r io.Reader, format Format) (Payload, error) {
	var p Payload
	if err := decode(r, format, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// LoadGraph reads a dependency graph document from a file.
func LoadGraph(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open dependency graph: %w", err)
	}
	defer f.Close()
	return DecodeGraph(f, FormatForPath(path))
}

// LoadPayload reads a payload document from a file.
func LoadPayload(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()
	return DecodePayload(f, FormatForPath(path))
}
