package application

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/db"
	"findr/backend/internal/notify"
)

// testPool connects to TEST_DATABASE_URL with the schema applied, or skips.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := db.Migrate(url); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	employerID  string
	applicantID string
	jobID       string
	appID       string
}

// seedApplication inserts an employer, a jobseeker, an active job, and a
// pending application for them.
func seedApplication(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{
		employerID:  uuid.NewString(),
		applicantID: uuid.NewString(),
		jobID:       uuid.NewString(),
		appID:       uuid.NewString(),
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO employers (id, email, password_hash, name, company_name)
		VALUES ($1, $2, 'x', 'Hiring Co', 'Hiring Co')`,
		f.employerID, fmt.Sprintf("%s@example.test", f.employerID)); err != nil {
		t.Fatalf("seeding employer: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1, $2, 'x', 'Applicant')`,
		f.applicantID, fmt.Sprintf("%s@example.test", f.applicantID)); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO jobs (id, employer_id, title, company_name, status)
		VALUES ($1, $2, 'Backend Engineer', 'Hiring Co', 'active')`,
		f.jobID, f.employerID); err != nil {
		t.Fatalf("seeding job: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO applications (id, job_id, applicant_id, employer_id)
		VALUES ($1, $2, $3, $4)`,
		f.appID, f.jobID, f.applicantID, f.employerID); err != nil {
		t.Fatalf("seeding application: %v", err)
	}
	return f
}

func awaitingFeedback(t *testing.T, pool *pgxpool.Pool, userID string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(),
		`SELECT awaiting_feedback FROM users WHERE id = $1`, userID).Scan(&n); err != nil {
		t.Fatalf("reading awaiting_feedback: %v", err)
	}
	return n
}

// The first employer view marks the application and bumps the applicant's
// awaiting-feedback counter once; later views and status updates leave it
// alone.
func TestFirstViewCountedOnce(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool, notify.NopDispatcher{})
	ctx := context.Background()
	f := seedApplication(t, pool)

	app, err := svc.Get(ctx, f.employerID, "employer", f.appID)
	if err != nil {
		t.Fatalf("employer Get returned error: %v", err)
	}
	if !app.ViewedByEmployer {
		t.Error("application not marked viewed after employer Get")
	}
	if got := awaitingFeedback(t, pool, f.applicantID); got != 1 {
		t.Fatalf("awaiting_feedback after first view = %d, want 1", got)
	}

	if _, err := svc.Get(ctx, f.employerID, "employer", f.appID); err != nil {
		t.Fatalf("second employer Get returned error: %v", err)
	}
	if got := awaitingFeedback(t, pool, f.applicantID); got != 1 {
		t.Errorf("awaiting_feedback after repeat view = %d, want 1", got)
	}

	// A status update also counts as a view but must not double-count.
	if _, err := svc.UpdateStatus(ctx, f.employerID, f.appID, StatusUpdateInput{
		Status: string(StatusShortlisted),
	}); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if got := awaitingFeedback(t, pool, f.applicantID); got != 1 {
		t.Errorf("awaiting_feedback after status update = %d, want 1", got)
	}
}

// An unviewed application reaching a decision via UpdateStatus counts the
// view exactly once there instead.
func TestStatusUpdateCountsUnseenView(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool, notify.NopDispatcher{})
	ctx := context.Background()
	f := seedApplication(t, pool)

	app, err := svc.UpdateStatus(ctx, f.employerID, f.appID, StatusUpdateInput{
		Status: string(StatusShortlisted),
	})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if !app.ViewedByEmployer {
		t.Error("application not marked viewed by status update")
	}
	if got := awaitingFeedback(t, pool, f.applicantID); got != 1 {
		t.Errorf("awaiting_feedback = %d, want 1", got)
	}
}
