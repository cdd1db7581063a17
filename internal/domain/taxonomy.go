package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Subcategory is a second-level listing category
type Subcategory struct {
	Slug string `yaml:"slug" json:"slug"`
	Name string `yaml:"name" json:"name"`
}

// Category is a top-level listing category
type Category struct {
	Slug          string        `yaml:"slug" json:"slug"`
	Name          string        `yaml:"name" json:"name"`
	Subcategories []Subcategory `yaml:"subcategories" json:"subcategories,omitempty"`
}

// County is a Swedish-style geographic region (län)
type County struct {
	Slug string `yaml:"slug" json:"slug"`
	Name string `yaml:"name" json:"name"`
}

// Taxonomy is the static category/county lookup table, loaded once at
// startup and read-only afterwards
type Taxonomy struct {
	categories  []Category
	counties    []County
	categoryBy  map[string]*Category
	countySlugs map[string]struct{}
}

type taxonomyFile struct {
	Categories []Category `yaml:"categories"`
	Counties   []County   `yaml:"counties"`
}

// LoadTaxonomy reads the taxonomy YAML file
func LoadTaxonomy(path string) (*Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}

	var f taxonomyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(f.Categories) == 0 || len(f.Counties) == 0 {
		return nil, fmt.Errorf("taxonomy: categories and counties must not be empty")
	}

	return NewTaxonomy(f.Categories, f.Counties), nil
}

// NewTaxonomy builds the lookup structure from in-memory tables
func NewTaxonomy(categories []Category, counties []County) *Taxonomy {
	t := &Taxonomy{
		categories:  categories,
		counties:    counties,
		categoryBy:  make(map[string]*Category, len(categories)),
		countySlugs: make(map[string]struct{}, len(counties)),
	}
	for i := range categories {
		t.categoryBy[categories[i].Slug] = &t.categories[i]
	}
	for _, c := range counties {
		t.countySlugs[c.Slug] = struct{}{}
	}
	return t
}

// ValidCategory reports whether slug is a known top-level category
func (t *Taxonomy) ValidCategory(slug string) bool {
	_, ok := t.categoryBy[slug]
	return ok
}

// ValidSubcategory reports whether sub belongs to category cat.
// An empty sub is always valid (subcategory is optional).
func (t *Taxonomy) ValidSubcategory(cat, sub string) bool {
	if sub == "" {
		return true
	}
	c, ok := t.categoryBy[cat]
	if !ok {
		return false
	}
	for _, s := range c.Subcategories {
		if s.Slug == sub {
			return true
		}
	}
	return false
}

// ValidCounty reports whether slug is a known county
func (t *Taxonomy) ValidCounty(slug string) bool {
	_, ok := t.countySlugs[slug]
	return ok
}

// Categories returns the category table for client listing
func (t *Taxonomy) Categories() []Category {
	return t.categories
}

// Counties returns the county table for client listing
func (t *Taxonomy) Counties() []County {
	return t.counties
}
