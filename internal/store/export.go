// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes the run stored under id to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, id string, w io.Writer) error {
	run, err := s.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the run stored under id to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, id string, w io.Writer) error {
	run, err := s.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
