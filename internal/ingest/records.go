// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-dedup/pkg/types"
)

// RecordFile is the object form of a record file. Both sources also accept
// a bare list of records.
type RecordFile struct {
	Papers []types.Paper `json:"papers" yaml:"papers"`
}

// JSONSource reads a JSON array of records or a {"papers": [...]} object.
type JSONSource struct{}

func (JSONSource) Name() string         { return "json" }
func (JSONSource) Extensions() []string { return []string{".json"} }

func (JSONSource) Read(r io.Reader) ([]types.Paper, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var papers []types.Paper
		if err := json.Unmarshal(data, &papers); err != nil {
			return nil, fmt.Errorf("parsing JSON records: %w", err)
		}
		return papers, nil
	}
	var rf RecordFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing JSON record file: %w", err)
	}
	return rf.Papers, nil
}

// YAMLSource reads a YAML list of records or a "papers:" mapping.
type YAMLSource struct{}

func (YAMLSource) Name() string         { return "yaml" }
func (YAMLSource) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLSource) Read(r io.Reader) ([]types.Paper, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing YAML records: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var papers []types.Paper
		if err := root.Decode(&papers); err != nil {
			return nil, fmt.Errorf("decoding YAML records: %w", err)
		}
		return papers, nil
	}
	var rf RecordFile
	if err := root.Decode(&rf); err != nil {
		return nil, fmt.Errorf("decoding YAML record file: %w", err)
	}
	return rf.Papers, nil
}

// WriteJSON writes papers to w as an indented JSON array.
func WriteJSON(w io.Writer, papers []types.Paper) error {
	return WriteJSONValue(w, papers)
}

// WriteJSONValue writes any value as indented JSON.
func WriteJSONValue(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes papers to w as a YAML list.
func WriteYAML(w io.Writer, papers []types.Paper) error {
	return WriteYAMLValue(w, papers)
}

// WriteYAMLValue writes any value as YAML.
func WriteYAMLValue(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
