package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"truthcore-hq/atlas/pkg/truth"
)

// newTestSQLite opens a file-backed store with the pure-Go driver so the
// suite runs without cgo.
func newTestSQLite(t *testing.T) Store {
	t.Helper()
	st, err := NewSQLite(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "truth.db"),
		Driver:       "sqlite",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLite() error: %v", err)
	}
	return st
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, newTestSQLite)
}

func TestSQLitePing(t *testing.T) {
	st := newTestSQLite(t)
	defer st.Close()
	if err := st.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truth.db")
	cfg := &SQLiteConfig{Path: path, Driver: "sqlite", MaxOpenConns: 1, MaxIdleConns: 1, BusyTimeout: time.Second}

	st, err := NewSQLite(cfg)
	if err != nil {
		t.Fatal(err)
	}
	seedVertical(t, st, "v1", "banking")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLite(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if err := reopened.ReadTx(context.Background(), func(tx Tx) error {
		v, err := tx.Vertical("v1")
		if err != nil {
			return err
		}
		if v.Key != "banking" {
			t.Errorf("Key = %q, want banking", v.Key)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func TestSQLiteDefaultConfig(t *testing.T) {
	cfg := DefaultSQLiteConfig()
	if cfg.Driver != "sqlite3" {
		t.Errorf("Driver = %q, want sqlite3", cfg.Driver)
	}
	if !cfg.WALMode {
		t.Error("WALMode = false, want true")
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		t.Error("MaxIdleConns exceeds MaxOpenConns")
	}
}

func TestSQLiteNullableColumns(t *testing.T) {
	st := newTestSQLite(t)
	defer st.Close()
	ctx := context.Background()

	seedVertical(t, st, "v1", "banking")
	seedSubVertical(t, st, "sv1", "v1", "employee-banking")

	// A draft version with nil ApprovedAt and no IPR must round-trip.
	v := &truth.PolicyTextVersion{
		ID:            "ptv1",
		SubVerticalID: "sv1",
		Version:       1,
		SourceFormat:  truth.SourceFormatText,
		SourceText:    "target the CFO",
		PolicyHash:    "abc",
		Status:        truth.TextStatusDraft,
		CreatedAt:     time.Now().UTC(),
	}
	if err := st.WriteTx(ctx, func(tx Tx) error {
		return tx.InsertPolicyTextVersion(v)
	}); err != nil {
		t.Fatal(err)
	}

	if err := st.ReadTx(ctx, func(tx Tx) error {
		got, err := tx.PolicyTextVersion("ptv1")
		if err != nil {
			return err
		}
		if got.ApprovedAt != nil {
			t.Errorf("ApprovedAt = %v, want nil", got.ApprovedAt)
		}
		if got.ApprovedBy != "" {
			t.Errorf("ApprovedBy = %q, want empty", got.ApprovedBy)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}
