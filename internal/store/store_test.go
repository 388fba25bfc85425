package store

import (
	"context"
	"errors"
	"net"
	"regexp"
	"syscall"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestQueryMapsFieldsInColumnOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	recorded := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT signal_id, recorded_at, notes FROM signal_data WHERE session_id = $1`)).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"signal_id", "recorded_at", "notes"}).
			AddRow("sig-1", recorded, []byte("clean")).
			AddRow("sig-2", recorded, nil))

	rows, err := st.Query(context.Background(), `SELECT signal_id, recorded_at, notes FROM signal_data WHERE session_id = $1`,
		[]string{"id", "when", "notes"}, "sess-1")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(rows))
	}
	if rows[0]["id"] != "sig-1" || rows[0]["when"] != "2025-03-14T09:30:00Z" || rows[0]["notes"] != "clean" {
		t.Fatalf("unexpected first row: %#v", rows[0])
	}
	if rows[1]["notes"] != nil {
		t.Fatalf("expected nil notes, got %#v", rows[1]["notes"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryRejectsFieldMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT a, b FROM t`).WillReturnRows(sqlmock.NewRows([]string{"a", "b"}).AddRow(1, 2))

	st := &Store{DB: db}
	if _, err := st.Query(context.Background(), `SELECT a, b FROM t`, []string{"a"}); err == nil {
		t.Fatalf("expected column/field mismatch error")
	}
}

func TestQueryWithoutDatabaseIsUnavailable(t *testing.T) {
	var st *Store
	if _, err := st.Query(context.Background(), `SELECT 1`, []string{"x"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := (&Store{}).ListExperiments(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for nil DB, got %v", err)
	}
}

func TestQueryConnectionFailureIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT researcher_id FROM researcher`).
		WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})

	st := &Store{DB: db}
	_, err = st.ResearcherIDByName(context.Background(), "Dr. Sarah Chen")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestResearcherIDByNameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT researcher_id FROM researcher WHERE name = $1 LIMIT 1`)).
		WithArgs("Nobody").
		WillReturnRows(sqlmock.NewRows([]string{"researcher_id"}))

	st := &Store{DB: db}
	if _, err := st.ResearcherIDByName(context.Background(), "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
