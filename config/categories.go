package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCategoryQueries maps each news category to its canned provider
// query. Unknown categories fall back to the generic breaking-news
// query at the engine level.
func DefaultCategoryQueries() map[string]string {
	return map[string]string{
		"technology":    "latest tech AI news today",
		"finance":       "finance market news today",
		"entertainment": "entertainment news today",
		"sports":        "sports news today",
		"world":         "world news today",
		"health":        "health news today",
	}
}

// LoadCategoryQueries merges a YAML category→query file over the
// defaults. On read or parse failure the defaults are returned together
// with the error so callers can log and continue.
func LoadCategoryQueries(path string) (map[string]string, error) {
	queries := DefaultCategoryQueries()
	if path == "" {
		return queries, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return queries, err
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return queries, err
	}
	for category, query := range overrides {
		queries[category] = query
	}
	return queries, nil
}
