package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yml
var categoriesYAML []byte

// CategorySeeder stores reference category names idempotently.
type CategorySeeder interface {
	Seed(ctx context.Context, names []string) error
}

type categoryFile struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories parses a category list, trimming names and dropping blanks
// and case-insensitive duplicates.
func LoadCategories(data []byte) ([]string, error) {
	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Categories))
	names := make([]string, 0, len(file.Categories))
	for _, raw := range file.Categories {
		name := strings.TrimSpace(raw)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// BuiltInCategories returns the embedded reference categories.
func BuiltInCategories() ([]string, error) {
	return LoadCategories(categoriesYAML)
}

// Categories seeds the built-in categories. Running it again is a no-op.
func Categories(ctx context.Context, s CategorySeeder) error {
	names, err := BuiltInCategories()
	if err != nil {
		return err
	}
	if err := s.Seed(ctx, names); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	return nil
}
