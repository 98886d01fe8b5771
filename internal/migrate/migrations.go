package migrate

import (
	"database/sql"
	"fmt"
	"sort"
)

type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "001_directory",
		UpSQL: `
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	department TEXT,
	base_salary TEXT NOT NULL DEFAULT '0'
);
CREATE TABLE IF NOT EXISTS vendors (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	contact TEXT
);
CREATE TABLE IF NOT EXISTS asset_categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	default_life_years INTEGER NOT NULL DEFAULT 0,
	default_method TEXT
);
`,
	},
	{
		Version: 2,
		Name:    "002_submissions",
		UpSQL: `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	submitted_at TEXT NOT NULL,
	payload_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions(submitted_at);
`,
	},
	{
		Version: 3,
		Name:    "003_directory_seed",
		UpSQL: `
INSERT OR IGNORE INTO employees(id,name,department,base_salary) VALUES
	('emp-001','Alice Nguyen','Finance','5000'),
	('emp-002','Bruno Costa','Operations','4500'),
	('emp-003','Chen Wei','Engineering','6200'),
	('emp-004','Dana Okafor','Procurement','4800');
INSERT OR IGNORE INTO vendors(id,name,contact) VALUES
	('ven-001','Acme Supplies','sales@acme.example'),
	('ven-002','Globex Industrial','orders@globex.example'),
	('ven-003','Initech Services','contact@initech.example');
INSERT OR IGNORE INTO asset_categories(id,name,default_life_years,default_method) VALUES
	('cat-it','IT Equipment',3,'straight_line'),
	('cat-vehicle','Vehicles',5,'declining_balance'),
	('cat-furniture','Furniture',10,'straight_line'),
	('cat-machinery','Machinery',8,'sum_of_years');
`,
	},
}

// Migrate applies the migrations in order, tracking progress in
// schema_version.
func Migrate(db *sql.DB) error {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version(version INTEGER NOT NULL);`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var currentVersion int
	err = tx.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&currentVersion)
	if err == sql.ErrNoRows {
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema_version: %w", err)
		}
		currentVersion = 0
	} else if err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for _, m := range sorted {
		if m.Version <= currentVersion {
			continue
		}
		if _, err := tx.Exec(m.UpSQL); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		if _, err := tx.Exec(`UPDATE schema_version SET version=?`, m.Version); err != nil {
			return fmt.Errorf("update schema_version: %w", err)
		}
		currentVersion = m.Version
	}
	return tx.Commit()
}
