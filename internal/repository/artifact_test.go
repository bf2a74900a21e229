package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vaultpass/ecomkit-go/internal/model"
)

func TestNewArtifactRepository(t *testing.T) {
	repo := NewArtifactRepository(nil)
	if repo == nil {
		t.Fatal("expected non-nil ArtifactRepository")
	}
	if repo.db != nil {
		t.Fatal("expected nil db when constructed with nil")
	}
}

func TestRecordNothing(t *testing.T) {
	// An empty record call must not touch the database.
	repo := NewArtifactRepository(nil)
	if err := repo.Record(context.Background()); err != nil {
		t.Fatalf("Record() unexpected error: %v", err)
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("nullString(\"\") should be NULL")
	}
	if ns := nullString("weak"); !ns.Valid || ns.String != "weak" {
		t.Errorf("nullString(\"weak\") = %+v", ns)
	}
}

func TestNewDBRequiresDSN(t *testing.T) {
	_, err := NewDB(context.Background(), "")
	if !errors.Is(err, ErrNoDSN) {
		t.Errorf("NewDB() error = %v, want %v", err, ErrNoDSN)
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS artifacts`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewArtifactRepository(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordInsertsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	artifacts := []model.Artifact{
		{ID: "id-1", Kind: model.KindPassword, Variant: "customer", BatchID: "batch-1", StrengthLevel: "strong", RequestedBy: "store-1", CreatedAt: at},
		{ID: "id-2", Kind: model.KindQRCode, Variant: "text", CreatedAt: at},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(
		"INSERT INTO artifacts (id, kind, variant, batch_id, strength_level, requested_by, created_at)"))
	prep.ExpectExec().
		WithArgs("id-1", "password", "customer", "batch-1", "strong", "store-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("id-2", "qrcode", "text", nil, nil, nil, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewArtifactRepository(db).Record(context.Background(), artifacts...); err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	boom := errors.New("duplicate key")
	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT INTO artifacts`).
		ExpectExec().
		WillReturnError(boom)
	mock.ExpectRollback()

	err = NewArtifactRepository(db).Record(context.Background(), model.Artifact{ID: "id-1", Kind: model.KindPassword})
	if !errors.Is(err, boom) {
		t.Fatalf("Record() error = %v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertWritesNoGeneratedValue(t *testing.T) {
	for _, col := range []string{"password", "hash", "value", "content", "text"} {
		if strings.Contains(insertArtifactQuery, col) || strings.Contains(artifactSchema, " "+col+" ") {
			t.Errorf("artifacts table must not store %q", col)
		}
	}
}
