package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/mfocus/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Observations *ObservationRepository
	Rules        ports.RuleRepository
	Preferences  ports.PreferenceRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Observations: NewObservationRepository(db),
		Rules:        NewRuleRepository(db),
		Preferences:  NewPreferenceRepository(db),
	}
}
