package ports

import (
	"context"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// RuleRepository persists the versioned rule table.
type RuleRepository interface {
	// Load returns the stored table. An empty store returns version 0.
	Load(ctx context.Context) (domain.RuleTable, error)
	// Replace stores rules as version expectedVersion+1. It fails with
	// domain.ErrRuleTableConflict if the stored version is not expectedVersion.
	Replace(ctx context.Context, expectedVersion uint64, rules []domain.Rule) (domain.RuleTable, error)
}
