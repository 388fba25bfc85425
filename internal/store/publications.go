package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewPublication is one publication row to insert.
type NewPublication struct {
	ID              string
	ExperimentID    string
	Title           string
	Authors         []string
	Journal         string
	PublicationDate *time.Time
	DOI             string
	Abstract        string
}

// insertPublication stores a publication through ex; authors are kept as a JSON array.
func insertPublication(ctx context.Context, ex execer, in NewPublication) (string, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", fmt.Errorf("%w: publication title is required", ErrInvalid)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	authors, err := json.Marshal(in.Authors)
	if err != nil {
		return "", err
	}
	_, err = ex.ExecContext(ctx, `
INSERT INTO publication (publication_id, experiment_id, title, authors, journal, publication_date, doi, abstract)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		in.ID, nullString(in.ExperimentID), in.Title, string(authors), nullString(in.Journal), nullTime(in.PublicationDate),
		nullString(in.DOI), nullString(in.Abstract))
	if err != nil {
		return "", classify(err)
	}
	return in.ID, nil
}

// ExperimentPublications lists publications documenting an experiment.
func (s *Store) ExperimentPublications(ctx context.Context, experimentID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT publication_id, title, authors, journal, publication_date, doi
FROM publication
WHERE experiment_id = $1
ORDER BY publication_date DESC`,
		[]string{"publication_id", "title", "authors", "journal", "publication_date", "doi"},
		experimentID)
}
