package app

import (
	"database/sql"

	"ledgerdesk/internal/config"
	"ledgerdesk/internal/db"
	"ledgerdesk/internal/migrate"
)

// Env is the wired-up workspace: resolved config plus the opened and migrated
// workspace database.
type Env struct {
	Config *config.Config
	DB     *sql.DB
}

// Resolve opens the workspace, applies migrations, and loads ledgerdesk.yml,
// falling back to the built-in defaults when no config file exists.
func Resolve(workspace string) (Env, error) {
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return Env{}, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return Env{}, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return Env{}, err
	}
	return Env{Config: cfg, DB: conn}, nil
}

// Close releases workspace resources.
func (e Env) Close() error {
	if e.DB != nil {
		return e.DB.Close()
	}
	return nil
}
