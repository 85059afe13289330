package grc

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// WebGuidance is the GC web standards checklist issued in lieu of a formal SA&A
type WebGuidance struct {
	Summary    GuidanceSummary    `json:"summary" yaml:"summary"`
	Categories []GuidanceCategory `json:"categories" yaml:"categories"`
}

// GuidanceSummary holds the report heading text
type GuidanceSummary struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Footer      string `json:"footer" yaml:"footer"`
}

// GuidanceCategory groups related checklist items
type GuidanceCategory struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Items       []GuidanceItem `json:"items" yaml:"items"`
}

// GuidanceItem is a single checklist line. Items that are not required are recommended.
type GuidanceItem struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Required bool   `json:"required" yaml:"required"`
}

// TotalCount returns the number of checklist items
func (g WebGuidance) TotalCount() int {
	n := 0
	for _, c := range g.Categories {
		n += len(c.Items)
	}
	return n
}

// RequiredCount returns the number of mandatory checklist items
func (g WebGuidance) RequiredCount() int {
	n := 0
	for _, c := range g.Categories {
		for _, item := range c.Items {
			if item.Required {
				n++
			}
		}
	}
	return n
}

// WebGuidance returns a copy of the web guidance checklist
func (c *Catalog) WebGuidance() WebGuidance {
	g := WebGuidance{Summary: c.guidance.Summary}
	g.Categories = make([]GuidanceCategory, len(c.guidance.Categories))
	for i, cat := range c.guidance.Categories {
		cat.Items = slices.Clone(cat.Items)
		g.Categories[i] = cat
	}
	return g
}

func parseGuidance(data []byte) (WebGuidance, error) {
	var g WebGuidance
	if err := yaml.Unmarshal(data, &g); err != nil {
		return WebGuidance{}, fmt.Errorf("%w: parse web guidance: %w", ErrInvalidCatalog, err)
	}
	seen := make(map[string]bool)
	for _, cat := range g.Categories {
		for _, item := range cat.Items {
			if seen[item.ID] {
				return WebGuidance{}, fmt.Errorf("%w: duplicate web guidance item %q", ErrInvalidCatalog, item.ID)
			}
			seen[item.ID] = true
		}
	}
	return g, nil
}
