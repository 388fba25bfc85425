package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewAnalysis is the input for CreateAnalysis. Parameters and Results are
// opaque JSON text.
type NewAnalysis struct {
	ID              string
	SignalID        string
	ResearcherID    string
	AnalysisType    string
	Parameters      string
	Results         string
	Findings        string
	ConfidenceScore float64
	AnalyzedAt      time.Time
}

func (s *Store) CreateAnalysis(ctx context.Context, in NewAnalysis) (string, error) {
	if in.SignalID == "" || in.ResearcherID == "" || strings.TrimSpace(in.AnalysisType) == "" {
		return "", fmt.Errorf("%w: analysis requires signal, researcher and type", ErrInvalid)
	}
	if in.ConfidenceScore < 0 || in.ConfidenceScore > 1 {
		return "", fmt.Errorf("%w: confidence_score must be within [0,1]", ErrInvalid)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.AnalyzedAt.IsZero() {
		in.AnalyzedAt = time.Now()
	}
	_, err := s.exec(ctx, `
INSERT INTO analysis (analysis_id, signal_id, researcher_id, analysis_type, parameters, results, findings, confidence_score, analyzed_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		in.ID, in.SignalID, in.ResearcherID, in.AnalysisType, in.Parameters, in.Results, in.Findings, in.ConfidenceScore, in.AnalyzedAt.UTC())
	if err != nil {
		return "", err
	}
	return in.ID, nil
}

// SignalAnalyses lists analyses performed on a signal, newest first.
func (s *Store) SignalAnalyses(ctx context.Context, signalID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT a.analysis_id, a.analysis_type, a.findings, a.confidence_score, a.analyzed_at, r.name AS analyst_name
FROM analysis a
JOIN researcher r ON a.researcher_id = r.researcher_id
WHERE a.signal_id = $1
ORDER BY a.analyzed_at DESC`,
		[]string{"analysis_id", "analysis_type", "findings", "confidence_score", "analyzed_at", "analyst_name"},
		signalID)
}

// RecentAnalyses returns the latest analyses across all signals.
func (s *Store) RecentAnalyses(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Query(ctx, `
SELECT a.analysis_id, a.signal_id, a.analysis_type, a.findings, a.confidence_score, a.analyzed_at,
       r.name AS analyst_name, sig.signal_type
FROM analysis a
JOIN researcher r ON r.researcher_id = a.researcher_id
JOIN signal_data sig ON sig.signal_id = a.signal_id
ORDER BY a.analyzed_at DESC
LIMIT $1`,
		[]string{"analysis_id", "signal_id", "analysis_type", "findings", "confidence_score", "analyzed_at", "analyst_name", "signal_type"},
		limit)
}

// ExperimentAnalyses returns every analysis of an experiment's signals.
func (s *Store) ExperimentAnalyses(ctx context.Context, experimentID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT a.analysis_id, a.signal_id, a.analysis_type, a.parameters, a.results, a.findings, a.confidence_score,
       a.analyzed_at, r.name AS analyst_name
FROM analysis a
JOIN signal_data sig ON sig.signal_id = a.signal_id
JOIN researcher r ON r.researcher_id = a.researcher_id
WHERE sig.experiment_id = $1
ORDER BY a.analyzed_at`,
		[]string{"analysis_id", "signal_id", "analysis_type", "parameters", "results", "findings", "confidence_score",
			"analyzed_at", "analyst_name"},
		experimentID)
}
