package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// PlanSeed is one entry of the plan catalog seed file.
type PlanSeed struct {
	Name              string `yaml:"name"`
	PriceCents        int64  `yaml:"price_cents"`
	DailyLimit        int    `yaml:"daily_limit"`
	ValidityDays      int    `yaml:"validity_days"`
	CommissionPercent string `yaml:"commission_percent"`
	SortOrder         int    `yaml:"sort_order"`
}

type planFile struct {
	Plans []PlanSeed `yaml:"plans"`
}

// LoadPlanSeeds parses the YAML plan catalog at path.
func LoadPlanSeeds(path string) ([]PlanSeed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	var f planFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse plans file: %w", err)
	}
	for i, p := range f.Plans {
		if p.Name == "" || p.DailyLimit <= 0 || p.ValidityDays <= 0 || p.PriceCents < 0 {
			return nil, fmt.Errorf("plans file entry %d (%q): name, daily_limit and validity_days are required", i, p.Name)
		}
	}
	return f.Plans, nil
}
