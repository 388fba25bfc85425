package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Signal processing states accepted by the schema.
const (
	SignalRaw       = "raw"
	SignalFiltered  = "filtered"
	SignalProcessed = "processed"
	SignalAnalyzed  = "analyzed"
)

// NewSignal is a signal recorded during a session.
type NewSignal struct {
	ID               string
	DeviceID         string
	SignalType       string
	DurationSeconds  float64
	SamplingRate     int
	Channels         int
	FilePath         string
	QualityScore     *float64
	ProcessingStatus string
	RecordedAt       *time.Time
	Notes            string
}

// NewSession is the input for CreateSession.
type NewSession struct {
	ID              string
	ExperimentID    string
	ParticipantID   string
	ResearcherID    string
	SessionDate     time.Time
	DurationMinutes int
	Notes           string
	Signals         []NewSignal
}

// CreateSession inserts a session and its signals atomically and returns the
// new session id and signal ids in input order.
func (s *Store) CreateSession(ctx context.Context, in NewSession) (string, []string, error) {
	if in.ExperimentID == "" || in.ResearcherID == "" {
		return "", nil, fmt.Errorf("%w: session requires an experiment and a researcher", ErrInvalid)
	}
	for i, sig := range in.Signals {
		if sig.DeviceID == "" {
			return "", nil, fmt.Errorf("%w: signal %d has no device_id", ErrInvalid, i)
		}
		if sig.QualityScore != nil && (*sig.QualityScore < 0 || *sig.QualityScore > 1) {
			return "", nil, fmt.Errorf("%w: signal %d quality_score must be within [0,1]", ErrInvalid, i)
		}
		if sig.ProcessingStatus != "" && !validProcessingStatus(sig.ProcessingStatus) {
			return "", nil, fmt.Errorf("%w: signal %d has unknown processing_status %q", ErrInvalid, i, sig.ProcessingStatus)
		}
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.ParticipantID == "" {
		in.ParticipantID = uuid.NewString()
	}
	signalIDs := make([]string, 0, len(in.Signals))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO session (session_id, experiment_id, participant_id, researcher_id, session_date, duration_minutes, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			in.ID, in.ExperimentID, in.ParticipantID, in.ResearcherID, in.SessionDate.UTC(), in.DurationMinutes, nullString(in.Notes)); err != nil {
			return err
		}
		for _, sig := range in.Signals {
			id, err := insertSignal(ctx, tx, in.ExperimentID, in.ID, sig, in.SessionDate)
			if err != nil {
				return err
			}
			signalIDs = append(signalIDs, id)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return in.ID, signalIDs, nil
}

func insertSignal(ctx context.Context, tx *sql.Tx, experimentID, sessionID string, sig NewSignal, sessionDate time.Time) (string, error) {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.ProcessingStatus == "" {
		sig.ProcessingStatus = SignalRaw
	}
	recorded := sig.RecordedAt
	if recorded == nil {
		recorded = &sessionDate
	}
	var quality sql.NullFloat64
	if sig.QualityScore != nil {
		quality = sql.NullFloat64{Float64: *sig.QualityScore, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO signal_data (signal_id, experiment_id, session_id, device_id, signal_type, duration_seconds, sampling_rate, channels,
                         file_path, quality_score, processing_status, recorded_at, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		sig.ID, experimentID, sessionID, sig.DeviceID, nullString(sig.SignalType), sig.DurationSeconds, sig.SamplingRate, sig.Channels,
		nullString(sig.FilePath), quality, sig.ProcessingStatus, nullTime(recorded), nullString(sig.Notes))
	if err != nil {
		return "", err
	}
	return sig.ID, nil
}

func validProcessingStatus(status string) bool {
	switch strings.TrimSpace(status) {
	case SignalRaw, SignalFiltered, SignalProcessed, SignalAnalyzed:
		return true
	}
	return false
}

// SessionSignals lists the signals recorded in a session with their device.
func (s *Store) SessionSignals(ctx context.Context, sessionID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT s.signal_id, s.signal_type, s.duration_seconds, s.sampling_rate, s.channels, s.quality_score,
       s.processing_status, s.file_path, s.notes, d.name AS device_name, d.device_type
FROM signal_data s
JOIN device d ON s.device_id = d.device_id
WHERE s.session_id = $1
ORDER BY s.recorded_at DESC`,
		[]string{"signal_id", "signal_type", "duration_seconds", "sampling_rate", "channels", "quality_score",
			"processing_status", "file_path", "notes", "device_name", "device_type"},
		sessionID)
}
