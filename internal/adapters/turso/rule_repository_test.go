package turso_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/emiliopalmerini/mfocus/internal/adapters/turso"
	"github.com/emiliopalmerini/mfocus/internal/domain"
)

func TestRuleRepository_ReplaceAndLoad(t *testing.T) {
	repo := turso.NewRuleRepository(testDB(t))
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if empty.Version != 0 || len(empty.Rules) != 0 {
		t.Fatalf("Load() on empty store = %+v", empty)
	}

	rules := []domain.Rule{
		{Pattern: "youtube", Kind: domain.MatchSubstring, Category: "Video Streaming"},
		{Pattern: `github\.com/.+/pull/`, Kind: domain.MatchRegex, Category: "Code Review"},
	}
	table, err := repo.Replace(ctx, 0, rules)
	if err != nil {
		t.Fatalf("Replace() error: %v", err)
	}
	if table.Version != 1 {
		t.Errorf("Replace() version = %d, want 1", table.Version)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(domain.RuleTable{Version: 1, Rules: rules}, loaded); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	if _, err := repo.Replace(ctx, 1, rules[:1]); err != nil {
		t.Fatalf("second Replace() error: %v", err)
	}
	loaded, _ = repo.Load(ctx)
	if loaded.Version != 2 || len(loaded.Rules) != 1 {
		t.Errorf("Load() after second replace = %+v", loaded)
	}
}

func TestRuleRepository_Conflict(t *testing.T) {
	repo := turso.NewRuleRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.Replace(ctx, 0, nil); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	for _, stale := range []uint64{0, 5} {
		_, err := repo.Replace(ctx, stale, []domain.Rule{{Pattern: "x", Kind: domain.MatchSubstring, Category: "Other"}})
		if !errors.Is(err, domain.ErrRuleTableConflict) {
			t.Errorf("Replace(expected=%d) error = %v, want ErrRuleTableConflict", stale, err)
		}
	}

	loaded, _ := repo.Load(ctx)
	if loaded.Version != 1 || len(loaded.Rules) != 0 {
		t.Errorf("rejected replace changed the table: %+v", loaded)
	}
}
