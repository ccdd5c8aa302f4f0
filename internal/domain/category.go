package domain

import (
	"fmt"
	"strings"
)

// Reserved category names.
const (
	// CategoryOther receives observations that match no rule.
	CategoryOther = "Other"
	// CategoryIdle fills timeline gaps where nothing was observed.
	CategoryIdle = "Idle"
)

// Category is a named classification bucket with display metadata.
type Category struct {
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"`
	Distraction bool   `json:"distraction" yaml:"distraction"`
}

// OtherCategory is the reserved fallback category.
var OtherCategory = Category{Name: CategoryOther, Color: "#6B7280"}

// IdleCategory is the reserved pseudo-category for untracked time.
var IdleCategory = Category{Name: CategoryIdle, Color: "#E5E7EB"}

// CategorySet is the fixed set of categories configured at startup,
// keyed by name. It always contains Other and Idle.
type CategorySet struct {
	order  []string
	byName map[string]Category
}

// NewCategorySet validates names and adds the reserved categories when missing.
func NewCategorySet(categories []Category) (*CategorySet, error) {
	s := &CategorySet{byName: make(map[string]Category, len(categories)+2)}
	for _, c := range categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("category name is empty")
		}
		if _, dup := s.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		s.byName[c.Name] = c
		s.order = append(s.order, c.Name)
	}
	for _, reserved := range []Category{OtherCategory, IdleCategory} {
		if _, ok := s.byName[reserved.Name]; !ok {
			s.byName[reserved.Name] = reserved
			s.order = append(s.order, reserved.Name)
		}
	}
	return s, nil
}

// Get returns the category with the given name.
func (s *CategorySet) Get(name string) (Category, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Other returns the configured Other category.
func (s *CategorySet) Other() Category {
	return s.byName[CategoryOther]
}

// Idle returns the configured Idle category.
func (s *CategorySet) Idle() Category {
	return s.byName[CategoryIdle]
}

// All returns the categories in configuration order.
func (s *CategorySet) All() []Category {
	out := make([]Category, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}
