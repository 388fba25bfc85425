package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Experiment statuses accepted by the schema.
const (
	ExperimentPlanning  = "planning"
	ExperimentActive    = "active"
	ExperimentCompleted = "completed"
	ExperimentArchived  = "archived"
)

// ValidExperimentStatus reports whether status is one of the four lifecycle states.
func ValidExperimentStatus(status string) bool {
	switch status {
	case ExperimentPlanning, ExperimentActive, ExperimentCompleted, ExperimentArchived:
		return true
	}
	return false
}

// ListExperiments returns all experiments with their PI name, newest first.
func (s *Store) ListExperiments(ctx context.Context) ([]Row, error) {
	return s.Query(ctx, `
SELECT e.experiment_id, e.name, e.description, e.status, e.start_date, e.end_date, r.name AS principal_investigator
FROM experiment e
LEFT JOIN researcher r ON r.researcher_id = e.principal_investigator_id
ORDER BY e.start_date DESC NULLS LAST`,
		[]string{"experiment_id", "name", "description", "status", "start_date", "end_date", "principal_investigator"})
}

// GetExperiment returns the experiment header or ErrNotFound.
func (s *Store) GetExperiment(ctx context.Context, id string) (Row, error) {
	return s.queryOne(ctx, `
SELECT e.experiment_id, e.name, e.description, e.protocol, e.hypothesis, e.status, e.start_date, e.end_date,
       e.principal_investigator_id, r.name AS principal_investigator
FROM experiment e
LEFT JOIN researcher r ON r.researcher_id = e.principal_investigator_id
WHERE e.experiment_id = $1`,
		[]string{"experiment_id", "name", "description", "protocol", "hypothesis", "status", "start_date", "end_date",
			"principal_investigator_id", "principal_investigator"},
		id)
}

// ExperimentDetails returns the experiment with its devices and sessions attached.
func (s *Store) ExperimentDetails(ctx context.Context, id string) (Row, error) {
	exp, err := s.GetExperiment(ctx, id)
	if err != nil {
		return nil, err
	}
	devices, err := s.ExperimentDevices(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.ExperimentSessions(ctx, id)
	if err != nil {
		return nil, err
	}
	exp["devices"] = devices
	exp["sessions"] = sessions
	return exp, nil
}

// ExperimentDevices lists devices linked to an experiment.
func (s *Store) ExperimentDevices(ctx context.Context, experimentID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT d.device_id, d.name, d.device_type, d.manufacturer, d.model, ed.configuration
FROM experiment_device ed
JOIN device d ON d.device_id = ed.device_id
WHERE ed.experiment_id = $1
ORDER BY d.name`,
		[]string{"device_id", "name", "device_type", "manufacturer", "model", "configuration"},
		experimentID)
}

// ExperimentSessions lists sessions of an experiment, newest first.
func (s *Store) ExperimentSessions(ctx context.Context, experimentID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT s.session_id, s.session_date, s.duration_minutes, s.notes, r.name AS researcher_name
FROM session s
JOIN researcher r ON s.researcher_id = r.researcher_id
WHERE s.experiment_id = $1
ORDER BY s.session_date DESC`,
		[]string{"session_id", "session_date", "duration_minutes", "notes", "researcher_name"},
		experimentID)
}

// ExperimentLineage traces experiment -> session -> signal -> analysis.
func (s *Store) ExperimentLineage(ctx context.Context, experimentID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT experiment_name, session_id, session_date, signal_id, signal_type, quality_score, analysis_type, confidence_score
FROM experiment_lineage
WHERE experiment_id = $1
ORDER BY session_date, signal_type`,
		[]string{"experiment_name", "session_id", "session_date", "signal_id", "signal_type", "quality_score", "analysis_type", "confidence_score"},
		experimentID)
}

// NewExperiment is the input for CreateExperiment.
type NewExperiment struct {
	ID                      string
	Name                    string
	Description             string
	Protocol                string
	Hypothesis              string
	Status                  string
	StartDate               time.Time
	EndDate                 *time.Time
	PrincipalInvestigatorID string
}

// CreateExperiment inserts an experiment and returns its id.
func (s *Store) CreateExperiment(ctx context.Context, in NewExperiment) (string, error) {
	if strings.TrimSpace(in.Name) == "" || in.PrincipalInvestigatorID == "" {
		return "", fmt.Errorf("%w: experiment name and principal investigator are required", ErrInvalid)
	}
	if in.Status == "" {
		in.Status = ExperimentPlanning
	}
	if !ValidExperimentStatus(in.Status) {
		return "", fmt.Errorf("%w: unknown experiment status %q", ErrInvalid, in.Status)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := s.exec(ctx, `
INSERT INTO experiment (experiment_id, name, description, protocol, hypothesis, start_date, end_date, status, principal_investigator_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		in.ID, in.Name, in.Description, in.Protocol, in.Hypothesis, in.StartDate.UTC(), nullTime(in.EndDate), in.Status, in.PrincipalInvestigatorID)
	if err != nil {
		return "", err
	}
	return in.ID, nil
}

// LinkExperimentDevice records that an experiment uses a device.
func (s *Store) LinkExperimentDevice(ctx context.Context, experimentID, deviceID, configuration string) error {
	_, err := s.exec(ctx, `
INSERT INTO experiment_device (experiment_id, device_id, configuration)
VALUES ($1,$2,$3)
ON CONFLICT (experiment_id, device_id) DO UPDATE SET configuration = EXCLUDED.configuration`,
		experimentID, deviceID, nullString(configuration))
	return err
}
