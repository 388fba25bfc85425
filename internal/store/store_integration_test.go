package store_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mohammad-safakhou/neurohub/internal/store"
)

func TestSeedAndQueryAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pgC, err := tcPostgres.RunContainer(ctx,
		tcPostgres.WithDatabase("neurohub"),
		tcPostgres.WithUsername("neurohub"),
		tcPostgres.WithPassword("neurohub"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := pgC.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://neurohub:neurohub@%s:%s/neurohub?sslmode=disable", host, port.Port())

	if err := store.Migrate("", dsn, "up", 0); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	sum, err := st.Seed(ctx, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if sum.Researchers != 8 || sum.Devices != 6 || sum.Experiments != 4 || sum.Sessions != 10 || sum.Collaborations != 6 {
		t.Fatalf("unexpected seed summary: %s", sum)
	}

	chen, err := st.ResearcherIDByName(ctx, "Dr. Sarah Chen")
	if err != nil {
		t.Fatalf("ResearcherIDByName: %v", err)
	}
	watson, err := st.ResearcherIDByName(ctx, "Prof. Emily Watson")
	if err != nil {
		t.Fatalf("ResearcherIDByName: %v", err)
	}

	// Both orderings land on the same canonical row.
	created, err := st.AddCollaboration(ctx, store.Collaboration{ResearcherA: watson, ResearcherB: chen, ProjectName: "Attention BCI"})
	if err != nil || !created {
		t.Fatalf("first collaboration insert: created=%v err=%v", created, err)
	}
	created, err = st.AddCollaboration(ctx, store.Collaboration{ResearcherA: chen, ResearcherB: watson, ProjectName: "Attention BCI"})
	if err != nil || created {
		t.Fatalf("reversed insert should be a no-op: created=%v err=%v", created, err)
	}
	collabs, err := st.ResearcherCollaborations(ctx, chen)
	if err != nil {
		t.Fatalf("ResearcherCollaborations: %v", err)
	}
	if len(collabs) != 3 {
		t.Fatalf("expected 3 collaborators for Dr. Sarah Chen, got %d", len(collabs))
	}

	exps, err := st.ResearcherExperiments(ctx, chen)
	if err != nil || len(exps) != 1 {
		t.Fatalf("ResearcherExperiments: %v (%d rows)", err, len(exps))
	}
	details, err := st.ExperimentDetails(ctx, exps[0]["experiment_id"].(string))
	if err != nil {
		t.Fatalf("ExperimentDetails: %v", err)
	}
	if sessions := details["sessions"].([]store.Row); len(sessions) != 5 {
		t.Fatalf("expected 5 sessions, got %d", len(sessions))
	}

	lineage, err := st.ExperimentLineage(ctx, exps[0]["experiment_id"].(string))
	if err != nil {
		t.Fatalf("ExperimentLineage: %v", err)
	}
	if len(lineage) == 0 {
		t.Fatalf("expected lineage rows for an active experiment with analyses")
	}
	for _, row := range lineage {
		if row["experiment_name"] != "Motor Imagery BCI Training" || row["analysis_type"] == nil {
			t.Fatalf("unexpected lineage row: %v", row)
		}
	}

	anderson, err := st.ResearcherIDByName(ctx, "Dr. Lisa Anderson")
	if err != nil {
		t.Fatalf("ResearcherIDByName: %v", err)
	}
	emg, err := st.ResearcherExperiments(ctx, anderson)
	if err != nil || len(emg) != 1 {
		t.Fatalf("ResearcherExperiments: %v (%d rows)", err, len(emg))
	}
	pubs, err := st.ExperimentPublications(ctx, emg[0]["experiment_id"].(string))
	if err != nil || len(pubs) != 1 {
		t.Fatalf("ExperimentPublications: %v (%d rows)", err, len(pubs))
	}
	if pubs[0]["authors"] != `["Dr. Lisa Anderson","Dr. James Liu","Dr. Ahmed Hassan"]` {
		t.Fatalf("authors should be stored as a JSON array, got %v", pubs[0]["authors"])
	}

	// Ids that differ in case order differently bytewise than under en_US;
	// the canonical pair must still satisfy the table check.
	for _, id := range []string{"Zed", "apple"} {
		if _, err := st.DB.ExecContext(ctx, `INSERT INTO researcher (researcher_id, name) VALUES ($1, $2)`, id, "Collation "+id); err != nil {
			t.Fatalf("insert researcher %s: %v", id, err)
		}
	}
	created, err = st.AddCollaboration(ctx, store.Collaboration{ResearcherA: "apple", ResearcherB: "Zed"})
	if err != nil || !created {
		t.Fatalf("mixed-case collaboration: created=%v err=%v", created, err)
	}
}
