package turso

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// ObservationRepository stores observations in the observations table with
// timestamps as unix nanoseconds.
type ObservationRepository struct {
	db *sql.DB
}

func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) Append(ctx context.Context, obs domain.Observation) (domain.Observation, error) {
	if err := obs.Validate(); err != nil {
		return domain.Observation{}, err
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO observations (id, start_ns, end_ns, source, title)
		VALUES (?, ?, ?, ?, ?)
	`, obs.ID, obs.Start.UnixNano(), obs.End.UnixNano(), obs.Source, util.NullString(obs.Title))
	if err != nil {
		return domain.Observation{}, fmt.Errorf("failed to append observation: %w", err)
	}
	return obs, nil
}

func (r *ObservationRepository) Query(ctx context.Context, tr domain.TimeRange) iter.Seq2[domain.Observation, error] {
	return func(yield func(domain.Observation, error) bool) {
		if err := tr.Validate(); err != nil {
			yield(domain.Observation{}, err)
			return
		}

		rows, err := r.db.QueryContext(ctx, `
			SELECT id, start_ns, end_ns, source, title
			FROM observations
			WHERE start_ns < ? AND end_ns > ?
			ORDER BY start_ns, end_ns, id
		`, tr.End.UnixNano(), tr.Start.UnixNano())
		if err != nil {
			yield(domain.Observation{}, fmt.Errorf("failed to query observations: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				obs        domain.Observation
				start, end int64
				title      sql.NullString
			)
			if err := rows.Scan(&obs.ID, &start, &end, &obs.Source, &title); err != nil {
				yield(domain.Observation{}, fmt.Errorf("failed to scan observation: %w", err))
				return
			}
			obs.Start = time.Unix(0, start).UTC()
			obs.End = time.Unix(0, end).UTC()
			obs.Title = title.String
			if !yield(obs, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Observation{}, fmt.Errorf("failed to iterate observations: %w", err))
		}
	}
}

func (r *ObservationRepository) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM observations WHERE end_ns <= ?`, t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge observations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged observations: %w", err)
	}
	return n, nil
}
