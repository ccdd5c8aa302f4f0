// Package classifier maps observation sources to categories with an ordered
// rule table.
package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// DefaultCacheSize bounds the number of sources remembered per rule table.
const DefaultCacheSize = 4096

type compiledRule struct {
	rule     domain.Rule
	needle   string
	re       *regexp.Regexp
	category domain.Category
}

func (c compiledRule) matches(lowerSource, source string) bool {
	if c.re != nil {
		return c.re.MatchString(source)
	}
	return strings.Contains(lowerSource, c.needle)
}

// table is one immutable version of the rule table. The cache lives and dies
// with it.
type table struct {
	version uint64
	rules   []domain.Rule
	entries []compiledRule
	cache   *lru.Cache[string, domain.Category]
}

// Classifier resolves categories against the current rule table. Classify is
// safe for concurrent use with Swap: a call sees one table from start to end.
type Classifier struct {
	categories *domain.CategorySet
	cacheSize  int
	current    atomic.Pointer[table]
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCacheSize sets the per-table cache size. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *Classifier) { c.cacheSize = n }
}

// New builds a classifier whose initial table holds rules at the given version.
func New(categories *domain.CategorySet, version uint64, rules []domain.Rule, opts ...Option) (*Classifier, error) {
	c := &Classifier{categories: categories, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(c)
	}

	t, err := c.compile(version, rules)
	if err != nil {
		return nil, err
	}
	c.current.Store(t)
	return c, nil
}

// Classify returns the category of the first rule matching obs.Source, or
// Other when none does.
func (c *Classifier) Classify(obs domain.Observation) domain.Category {
	return c.current.Load().classify(obs.Source, c.categories.Other())
}

// ClassifySource classifies a bare source string.
func (c *Classifier) ClassifySource(source string) domain.Category {
	return c.current.Load().classify(source, c.categories.Other())
}

// Resolver returns a classification function pinned to the current table, so
// a long aggregation never mixes two rule sets.
func (c *Classifier) Resolver() func(domain.Observation) domain.Category {
	t := c.current.Load()
	other := c.categories.Other()
	return func(obs domain.Observation) domain.Category {
		return t.classify(obs.Source, other)
	}
}

// Table returns the current version and a copy of its rules.
func (c *Classifier) Table() domain.RuleTable {
	t := c.current.Load()
	return domain.RuleTable{Version: t.version, Rules: append([]domain.Rule(nil), t.rules...)}
}

// Version returns the current table version.
func (c *Classifier) Version() uint64 {
	return c.current.Load().version
}

// Validate compiles rules without installing them and returns them with
// canonical match kinds.
func (c *Classifier) Validate(rules []domain.Rule) ([]domain.Rule, error) {
	t, err := c.compile(0, rules)
	if err != nil {
		return nil, err
	}
	return t.rules, nil
}

// Swap replaces the table with rules if the current version is still
// expectedVersion. The new table gets version expectedVersion+1.
func (c *Classifier) Swap(expectedVersion uint64, rules []domain.Rule) (domain.RuleTable, error) {
	return c.Install(expectedVersion, expectedVersion+1, rules)
}

// Install replaces the table with rules at newVersion if the current version
// is still expectedVersion. It is used when the version is assigned by a
// persistent store.
func (c *Classifier) Install(expectedVersion, newVersion uint64, rules []domain.Rule) (domain.RuleTable, error) {
	cur := c.current.Load()
	if cur.version != expectedVersion {
		return domain.RuleTable{}, fmt.Errorf("%w: expected version %d, current is %d",
			domain.ErrRuleTableConflict, expectedVersion, cur.version)
	}

	next, err := c.compile(newVersion, rules)
	if err != nil {
		return domain.RuleTable{}, err
	}

	if !c.current.CompareAndSwap(cur, next) {
		return domain.RuleTable{}, fmt.Errorf("%w: table changed during swap", domain.ErrRuleTableConflict)
	}
	return domain.RuleTable{Version: next.version, Rules: append([]domain.Rule(nil), next.rules...)}, nil
}

// Categories lists the configured categories.
func (c *Classifier) Categories() []domain.Category {
	return c.categories.All()
}

// Category looks up a configured category by name.
func (c *Classifier) Category(name string) (domain.Category, bool) {
	return c.categories.Get(name)
}

// CategorySet returns the configured category set.
func (c *Classifier) CategorySet() *domain.CategorySet {
	return c.categories
}

func (c *Classifier) compile(version uint64, rules []domain.Rule) (*table, error) {
	t := &table{
		version: version,
		rules:   make([]domain.Rule, 0, len(rules)),
		entries: make([]compiledRule, 0, len(rules)),
	}

	for i, r := range rules {
		kind, err := domain.ParseMatchKind(string(r.Kind))
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		r.Kind = kind

		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("%w: rule %d has an empty pattern", domain.ErrInvalidRule, i+1)
		}
		if r.Category == domain.CategoryIdle {
			return nil, fmt.Errorf("%w: rule %d targets the reserved %s category", domain.ErrInvalidRule, i+1, domain.CategoryIdle)
		}
		cat, ok := c.categories.Get(r.Category)
		if !ok {
			return nil, fmt.Errorf("%w: rule %d references %q", domain.ErrUnknownCategory, i+1, r.Category)
		}

		entry := compiledRule{rule: r, category: cat}
		switch kind {
		case domain.MatchRegex:
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %d: %v", domain.ErrInvalidRule, i+1, err)
			}
			entry.re = re
		default:
			entry.needle = strings.ToLower(r.Pattern)
		}

		t.rules = append(t.rules, r)
		t.entries = append(t.entries, entry)
	}

	if c.cacheSize > 0 {
		cache, err := lru.New[string, domain.Category](c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating classification cache: %w", err)
		}
		t.cache = cache
	}
	return t, nil
}

func (t *table) classify(source string, other domain.Category) domain.Category {
	if t.cache != nil {
		if cat, ok := t.cache.Get(source); ok {
			return cat
		}
	}

	cat := other
	lower := strings.ToLower(source)
	for _, e := range t.entries {
		if e.matches(lower, source) {
			cat = e.category
			break
		}
	}

	if t.cache != nil {
		t.cache.Add(source, cat)
	}
	return cat
}
