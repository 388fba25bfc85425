package store

import "context"

var signalListFields = []string{"signal_id", "signal_type", "quality_score", "processing_status", "recorded_at",
	"experiment_id", "experiment_name", "device_name"}

// RecentSignals returns the most recently recorded signals.
func (s *Store) RecentSignals(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.Query(ctx, `
SELECT s.signal_id, s.signal_type, s.quality_score, s.processing_status, s.recorded_at,
       e.experiment_id, e.name AS experiment_name, d.name AS device_name
FROM signal_data s
JOIN experiment e ON e.experiment_id = s.experiment_id
JOIN device d ON d.device_id = s.device_id
ORDER BY s.recorded_at DESC
LIMIT $1`, signalListFields, limit)
}

// ExperimentSignals returns every signal of an experiment with its session.
func (s *Store) ExperimentSignals(ctx context.Context, experimentID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT s.signal_id, s.session_id, s.signal_type, s.duration_seconds, s.sampling_rate, s.channels,
       s.quality_score, s.processing_status, s.file_path, s.recorded_at, d.name AS device_name
FROM signal_data s
JOIN device d ON d.device_id = s.device_id
WHERE s.experiment_id = $1
ORDER BY s.recorded_at, s.signal_type`,
		[]string{"signal_id", "session_id", "signal_type", "duration_seconds", "sampling_rate", "channels",
			"quality_score", "processing_status", "file_path", "recorded_at", "device_name"},
		experimentID)
}

// ResearcherSignals returns the signals recorded in sessions a researcher
// conducted, with the number of analyses already filed against each.
func (s *Store) ResearcherSignals(ctx context.Context, researcherName string) ([]Row, error) {
	return s.Query(ctx, `
SELECT s.signal_id, s.signal_type, s.quality_score, s.processing_status, s.recorded_at,
       e.name AS experiment_name, d.name AS device_name,
       (SELECT count(*) FROM analysis a WHERE a.signal_id = s.signal_id) AS analysis_count
FROM signal_data s
JOIN session se ON se.session_id = s.session_id
JOIN researcher r ON r.researcher_id = se.researcher_id
JOIN experiment e ON e.experiment_id = s.experiment_id
JOIN device d ON d.device_id = s.device_id
WHERE r.name = $1
ORDER BY s.recorded_at DESC`,
		[]string{"signal_id", "signal_type", "quality_score", "processing_status", "recorded_at",
			"experiment_name", "device_name", "analysis_count"},
		researcherName)
}
