// Package catalog reads plan seed files.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	planUsecases "github.com/examforge/examforge/internal/application/plan/usecases"
)

var ErrEmptyCatalog = errors.New("catalog contains no plans")

type catalogFile struct {
	Plans []catalogPlan `yaml:"plans"`
}

type catalogPlan struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	PriceMinor    int64  `yaml:"price_minor"`
	Interval      string `yaml:"interval"`
	GatewayPlanID string `yaml:"gateway_plan_id"`
	Active        *bool  `yaml:"active"`
}

// LoadFile parses the catalog at path.
func LoadFile(path string) ([]planUsecases.CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	entries, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes a catalog document. Unknown keys are rejected so a typo in
// a field name does not silently import a zero value. Plans default to
// active.
func Parse(r io.Reader) ([]planUsecases.CatalogEntry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, ErrEmptyCatalog
	}

	entries := make([]planUsecases.CatalogEntry, 0, len(file.Plans))
	for _, p := range file.Plans {
		active := true
		if p.Active != nil {
			active = *p.Active
		}
		entries = append(entries, planUsecases.CatalogEntry{
			Title:         p.Title,
			Description:   p.Description,
			PriceMinor:    p.PriceMinor,
			Interval:      p.Interval,
			GatewayPlanID: p.GatewayPlanID,
			Active:        active,
		})
	}
	return entries, nil
}
