package repository

import (
	"context"
	"database/sql"

	"github.com/vaultpass/ecomkit-go/internal/model"
)

const artifactSchema = `
	CREATE TABLE IF NOT EXISTS artifacts (
		id             CHAR(36)    NOT NULL PRIMARY KEY,
		kind           VARCHAR(16) NOT NULL,
		variant        VARCHAR(32) NOT NULL DEFAULT '',
		batch_id       CHAR(36)    NULL,
		strength_level VARCHAR(16) NULL,
		requested_by   VARCHAR(64) NULL,
		created_at     TIMESTAMP(3) NOT NULL,
		INDEX idx_artifacts_batch (batch_id),
		INDEX idx_artifacts_created (created_at)
	)`

const insertArtifactQuery = `
	INSERT INTO artifacts (id, kind, variant, batch_id, strength_level, requested_by, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

// ArtifactRepository persists audit records of generated artifacts.
type ArtifactRepository struct {
	db *sql.DB
}

// NewArtifactRepository creates a new ArtifactRepository.
func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// EnsureSchema creates the artifacts table when missing.
func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, artifactSchema)
	return err
}

// Record inserts one or more audit records in a single transaction.
func (r *ArtifactRepository) Record(ctx context.Context, artifacts ...model.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertArtifactQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range artifacts {
		if _, err := stmt.ExecContext(ctx,
			a.ID,
			a.Kind,
			a.Variant,
			nullString(a.BatchID),
			nullString(a.StrengthLevel),
			nullString(a.RequestedBy),
			a.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
