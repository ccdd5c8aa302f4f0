package analytics

import (
	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// RuleTable is the classifier surface the service needs.
type RuleTable interface {
	Resolver() func(domain.Observation) domain.Category
	CategorySet() *domain.CategorySet
	ClassifySource(source string) domain.Category
	Table() domain.RuleTable
	Validate(rules []domain.Rule) ([]domain.Rule, error)
	Swap(expectedVersion uint64, rules []domain.Rule) (domain.RuleTable, error)
	Install(expectedVersion, newVersion uint64, rules []domain.Rule) (domain.RuleTable, error)
}
