package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestCreateSessionWritesSignalsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	date := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	q := 0.92

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO session (session_id, experiment_id, participant_id, researcher_id, session_date, duration_minutes, notes)`)).
		WithArgs(sqlmock.AnyArg(), "exp-1", "p-7", "r-1", date, 45, "baseline").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO signal_data`)).
		WithArgs(sqlmock.AnyArg(), "exp-1", sqlmock.AnyArg(), "dev-1", "EEG", 600.0, 0, 0, nil, q, SignalRaw, date, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO signal_data`)).
		WithArgs(sqlmock.AnyArg(), "exp-1", sqlmock.AnyArg(), "dev-2", "ECG", 0.0, 0, 0, nil, nil, SignalFiltered, date, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sessionID, signalIDs, err := st.CreateSession(context.Background(), NewSession{
		ExperimentID: "exp-1", ParticipantID: "p-7", ResearcherID: "r-1", SessionDate: date, DurationMinutes: 45, Notes: "baseline",
		Signals: []NewSignal{
			{DeviceID: "dev-1", SignalType: "EEG", DurationSeconds: 600, QualityScore: &q},
			{DeviceID: "dev-2", SignalType: "ECG", ProcessingStatus: SignalFiltered},
		},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sessionID == "" || len(signalIDs) != 2 {
		t.Fatalf("unexpected ids %q %v", sessionID, signalIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateSessionRollsBackOnSignalFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO session`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO signal_data`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, _, err = st.CreateSession(context.Background(), NewSession{
		ExperimentID: "exp-1", ResearcherID: "r-1", SessionDate: time.Now(),
		Signals: []NewSignal{{DeviceID: "dev-missing"}},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateSessionValidatesBeforeWriting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	bad := 1.4
	_, _, err = st.CreateSession(context.Background(), NewSession{
		ExperimentID: "exp-1", ResearcherID: "r-1",
		Signals: []NewSignal{{DeviceID: "dev-1", QualityScore: &bad}},
	})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement should run: %v", err)
	}
}
