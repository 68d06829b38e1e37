package warehouse

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hamzaelk/offerpipe/internal/transform"
)

// SQLiteWarehouse loads cleaned offers into a SQLite database: one row per
// offer keyed by job_url, skills in a child table replaced on every load.
type SQLiteWarehouse struct {
	db *sql.DB
}

// Open opens (or creates) the warehouse database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*SQLiteWarehouse, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening warehouse db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging warehouse db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS offers (
		job_url           TEXT PRIMARY KEY,
		titre             TEXT NOT NULL,
		date_publication  TEXT,
		source            TEXT,
		compagnie         TEXT,
		description       TEXT,
		secteur           TEXT,
		fonction          TEXT,
		niveau_etudes     TEXT,
		niveau_experience TEXT,
		contrat           TEXT,
		region            TEXT,
		salaire           TEXT,
		loaded_at         DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS offer_skills (
		job_url    TEXT NOT NULL REFERENCES offers(job_url) ON DELETE CASCADE,
		nom        TEXT NOT NULL,
		type_skill TEXT NOT NULL CHECK (type_skill IN ('hard', 'soft'))
	);
	CREATE INDEX IF NOT EXISTS idx_offer_skills_url ON offer_skills(job_url);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating warehouse schema: %w", err)
	}

	return &SQLiteWarehouse{db: db}, nil
}

// Load upserts offers by job_url. An offer's skill rows are replaced
// wholesale so a reload never accumulates stale skills.
func (w *SQLiteWarehouse) Load(offers []transform.CleanedOffer) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.Prepare(`
		INSERT INTO offers (job_url, titre, date_publication, source, compagnie,
			description, secteur, fonction, niveau_etudes, niveau_experience,
			contrat, region, salaire)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_url) DO UPDATE SET
			titre = excluded.titre,
			date_publication = excluded.date_publication,
			source = excluded.source,
			compagnie = excluded.compagnie,
			description = excluded.description,
			secteur = excluded.secteur,
			fonction = excluded.fonction,
			niveau_etudes = excluded.niveau_etudes,
			niveau_experience = excluded.niveau_experience,
			contrat = excluded.contrat,
			region = excluded.region,
			salaire = excluded.salaire`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer upsert.Close()

	insertSkill, err := tx.Prepare(
		"INSERT INTO offer_skills (job_url, nom, type_skill) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare skill insert: %w", err)
	}
	defer insertSkill.Close()

	for _, o := range offers {
		secteur := ""
		for i, s := range o.Secteur {
			if i > 0 {
				secteur += ", "
			}
			secteur += s
		}
		if _, err := upsert.Exec(o.JobURL, o.Titre, o.DatePublication, o.Source,
			o.Compagnie, o.Description, secteur, o.Fonction, o.NiveauEtudes,
			o.NiveauExperience, o.Contrat, o.Region, o.Salaire); err != nil {
			return fmt.Errorf("upserting offer %s: %w", o.JobURL, err)
		}
		if _, err := tx.Exec("DELETE FROM offer_skills WHERE job_url = ?", o.JobURL); err != nil {
			return fmt.Errorf("clearing skills for %s: %w", o.JobURL, err)
		}
		for _, sk := range o.Skills {
			if _, err := insertSkill.Exec(o.JobURL, sk.Nom, sk.TypeSkill); err != nil {
				return fmt.Errorf("inserting skill for %s: %w", o.JobURL, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// Count returns the number of offers currently loaded.
func (w *SQLiteWarehouse) Count() (int, error) {
	var n int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM offers").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting offers: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (w *SQLiteWarehouse) Close() error {
	return w.db.Close()
}
