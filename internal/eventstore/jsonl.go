package eventstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

const maxLineSize = 1024 * 1024

// Record is the JSONL form of an observation. Either End or DurationSeconds
// must be set; End wins when both are present.
type Record struct {
	ID              string    `json:"id,omitempty"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end,omitzero"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Source          string    `json:"source"`
	Title           string    `json:"title,omitempty"`
}

// Observation converts the record, resolving End from DurationSeconds.
func (r Record) Observation() domain.Observation {
	end := r.End
	if end.IsZero() && r.DurationSeconds > 0 {
		end = r.Start.Add(time.Duration(r.DurationSeconds * float64(time.Second)))
	}
	return domain.Observation{
		ID:     r.ID,
		Start:  r.Start,
		End:    end,
		Source: r.Source,
		Title:  r.Title,
	}
}

// NewRecord builds the JSONL form of obs.
func NewRecord(obs domain.Observation) Record {
	return Record{
		ID:     obs.ID,
		Start:  obs.Start,
		End:    obs.End,
		Source: obs.Source,
		Title:  obs.Title,
	}
}

// ReadJSONL decodes one observation per line. Blank lines and lines starting
// with '#' are skipped. Decode errors carry the line number and stop the
// sequence.
func ReadJSONL(r io.Reader) iter.Seq2[domain.Observation, error] {
	return func(yield func(domain.Observation, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}

			var rec Record
			if err := json.Unmarshal([]byte(text), &rec); err != nil {
				yield(domain.Observation{}, fmt.Errorf("line %d: %w", line, err))
				return
			}
			if !yield(rec.Observation(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(domain.Observation{}, fmt.Errorf("reading jsonl: %w", err))
		}
	}
}

// WriteJSONL encodes observations one per line.
func WriteJSONL(w io.Writer, seq iter.Seq2[domain.Observation, error]) (int, error) {
	enc := json.NewEncoder(w)
	n := 0
	for obs, err := range seq {
		if err != nil {
			return n, err
		}
		if err := enc.Encode(NewRecord(obs)); err != nil {
			return n, fmt.Errorf("encoding observation %s: %w", obs.ID, err)
		}
		n++
	}
	return n, nil
}

// LoadJSONL appends every observation read from r to the store and returns
// how many were loaded.
func (m *Memory) LoadJSONL(ctx context.Context, r io.Reader) (int, error) {
	n := 0
	for obs, err := range ReadJSONL(r) {
		if err != nil {
			return n, err
		}
		if _, err := m.Append(ctx, obs); err != nil {
			return n, fmt.Errorf("observation %d: %w", n+1, err)
		}
		n++
	}
	return n, nil
}

// OpenJSONL builds a store from the JSONL file at path.
func OpenJSONL(ctx context.Context, path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m := NewMemory()
	if _, err := m.LoadJSONL(ctx, f); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}
