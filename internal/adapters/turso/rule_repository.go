package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// RuleRepository stores the ordered rule table and its version.
type RuleRepository struct {
	db *sql.DB
}

func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Load(ctx context.Context) (domain.RuleTable, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := currentVersion(ctx, tx)
	if err != nil {
		return domain.RuleTable{}, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT pattern, kind, category FROM classification_rules ORDER BY position`)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to load rules: %w", err)
	}
	defer rows.Close()

	table := domain.RuleTable{Version: version}
	for rows.Next() {
		var rule domain.Rule
		var kind string
		if err := rows.Scan(&rule.Pattern, &kind, &rule.Category); err != nil {
			return domain.RuleTable{}, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.Kind = domain.MatchKind(kind)
		table.Rules = append(table.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return table, nil
}

func (r *RuleRepository) Replace(ctx context.Context, expectedVersion uint64, rules []domain.Rule) (domain.RuleTable, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	next := expectedVersion + 1
	res, err := tx.ExecContext(ctx, `
		UPDATE rule_table
		SET version = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = 1 AND version = ?
	`, next, expectedVersion)
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to bump rule table version: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to bump rule table version: %w", err)
	}

	if n == 0 {
		current, err := currentVersion(ctx, tx)
		if err != nil {
			return domain.RuleTable{}, err
		}
		if current != 0 || expectedVersion != 0 {
			return domain.RuleTable{}, fmt.Errorf("%w: expected version %d, stored is %d",
				domain.ErrRuleTableConflict, expectedVersion, current)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO rule_table (id, version) VALUES (1, ?)`, next); err != nil {
			return domain.RuleTable{}, fmt.Errorf("failed to create rule table: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM classification_rules`); err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to clear rules: %w", err)
	}
	for i, rule := range rules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO classification_rules (position, pattern, kind, category) VALUES (?, ?, ?, ?)`,
			i, rule.Pattern, string(rule.Kind), rule.Category,
		); err != nil {
			return domain.RuleTable{}, fmt.Errorf("failed to insert rule %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.RuleTable{}, fmt.Errorf("failed to commit rule table: %w", err)
	}
	return domain.RuleTable{Version: next, Rules: append([]domain.Rule(nil), rules...)}, nil
}

func currentVersion(ctx context.Context, tx *sql.Tx) (uint64, error) {
	var version uint64
	err := tx.QueryRowContext(ctx, `SELECT version FROM rule_table WHERE id = 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rule table version: %w", err)
	}
	return version, nil
}
