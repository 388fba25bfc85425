package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var researcherFields = []string{"researcher_id", "name", "email", "institution", "expertise", "years_experience"}

// ListResearchers returns researchers with their activity counts and a short bio.
func (s *Store) ListResearchers(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Query(ctx, `
SELECT r.researcher_id, r.name, r.email, r.institution, r.expertise, r.years_experience,
       (SELECT COUNT(*) FROM experiment e WHERE e.principal_investigator_id = r.researcher_id) AS experiment_count,
       (SELECT COUNT(*) FROM publication p JOIN experiment e ON e.experiment_id = p.experiment_id
         WHERE e.principal_investigator_id = r.researcher_id) AS publication_count,
       (SELECT COUNT(*) FROM collaboration c
         WHERE c.researcher_id_a = r.researcher_id OR c.researcher_id_b = r.researcher_id) AS collaborator_count
FROM researcher r
ORDER BY r.name
LIMIT $1`,
		append(append([]string{}, researcherFields...), "experiment_count", "publication_count", "collaborator_count"),
		limit)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		r["bio"] = researcherBio(r)
	}
	return rows, nil
}

func researcherBio(r Row) string {
	expertise, _ := r["expertise"].(string)
	if strings.TrimSpace(expertise) == "" {
		return ""
	}
	return fmt.Sprintf("Research interests include %s.", expertise)
}

// GetResearcher returns one researcher or ErrNotFound.
func (s *Store) GetResearcher(ctx context.Context, id string) (Row, error) {
	row, err := s.queryOne(ctx, `
SELECT researcher_id, name, email, institution, expertise, years_experience
FROM researcher
WHERE researcher_id = $1`, researcherFields, id)
	if err != nil {
		return nil, err
	}
	row["bio"] = researcherBio(row)
	return row, nil
}

// ResearcherIDByName resolves an exact researcher name to its id.
func (s *Store) ResearcherIDByName(ctx context.Context, name string) (string, error) {
	row, err := s.queryOne(ctx, `SELECT researcher_id FROM researcher WHERE name = $1 LIMIT 1`, []string{"researcher_id"}, name)
	if err != nil {
		return "", err
	}
	id, _ := row["researcher_id"].(string)
	return id, nil
}

// ResearcherExperiments lists the experiments a researcher leads, newest first.
func (s *Store) ResearcherExperiments(ctx context.Context, researcherID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT e.experiment_id, e.name, e.description, e.status, e.start_date, e.end_date, e.hypothesis
FROM experiment e
WHERE e.principal_investigator_id = $1
ORDER BY e.start_date DESC`,
		[]string{"experiment_id", "name", "description", "status", "start_date", "end_date", "hypothesis"},
		researcherID)
}

// ResearcherCollaborations walks the undirected collaboration edges of a researcher.
func (s *Store) ResearcherCollaborations(ctx context.Context, researcherID string) ([]Row, error) {
	return s.Query(ctx, `
SELECT r.researcher_id, r.name, c.project_name, c.collaboration_type
FROM collaboration c
JOIN researcher r ON r.researcher_id = CASE WHEN c.researcher_id_a = $1 THEN c.researcher_id_b ELSE c.researcher_id_a END
WHERE c.researcher_id_a = $1 OR c.researcher_id_b = $1
ORDER BY r.name`,
		[]string{"researcher_id", "name", "project_name", "collaboration_type"},
		researcherID)
}

// NewResearcher is one researcher row to insert.
type NewResearcher struct {
	ID              string
	Name            string
	Email           string
	Institution     string
	Expertise       string
	YearsExperience int
}

// insertResearcher writes one researcher through ex, which may be a transaction.
func insertResearcher(ctx context.Context, ex execer, in NewResearcher) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("%w: researcher name is required", ErrInvalid)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx, `INSERT INTO researcher (researcher_id, name, email, institution, expertise, years_experience) VALUES ($1,$2,$3,$4,$5,$6)`,
		in.ID, in.Name, nullString(in.Email), nullString(in.Institution), nullString(in.Expertise), in.YearsExperience)
	if err != nil {
		return "", classify(err)
	}
	return in.ID, nil
}

// Collaboration is an undirected edge between two researchers.
type Collaboration struct {
	ResearcherA string
	ResearcherB string
	ProjectName string
	Type        string
	StartDate   *time.Time
}

// CanonicalPair orders two researcher ids so the smaller one comes first.
// Ordering is bytewise, matching the COLLATE "C" check on the collaboration table.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// AddCollaboration stores the edge under its canonical key. Inserting (A,B)
// and (B,A) yields a single row; the bool reports whether a row was created.
func (s *Store) AddCollaboration(ctx context.Context, c Collaboration) (bool, error) {
	if c.ResearcherA == "" || c.ResearcherB == "" {
		return false, fmt.Errorf("%w: collaboration requires two researchers", ErrInvalid)
	}
	if c.ResearcherA == c.ResearcherB {
		return false, fmt.Errorf("%w: a researcher cannot collaborate with themselves", ErrInvalid)
	}
	a, b := CanonicalPair(c.ResearcherA, c.ResearcherB)
	res, err := s.exec(ctx, `
INSERT INTO collaboration (researcher_id_a, researcher_id_b, project_name, collaboration_type, start_date)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (researcher_id_a, researcher_id_b) DO NOTHING`,
		a, b, nullString(c.ProjectName), nullString(c.Type), nullTime(c.StartDate))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
