package rewards

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/db"
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

func seedUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1, $2, 'x', 'Test User')`,
		id, fmt.Sprintf("%s@example.test", id))
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return id
}

func TestFollowBonusIdempotent(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool)
	ctx := context.Background()
	userID := seedUser(t, pool)

	first, err := svc.Follow(ctx, userID, PlatformLinkedIn)
	if err != nil {
		t.Fatalf("first Follow returned error: %v", err)
	}
	if first.AlreadyFollowed {
		t.Error("first Follow reported alreadyFollowed")
	}
	if first.PointsAwarded != PointsSocialFollow {
		t.Errorf("first Follow awarded %d points, want %d", first.PointsAwarded, PointsSocialFollow)
	}

	second, err := svc.Follow(ctx, userID, PlatformLinkedIn)
	if err != nil {
		t.Fatalf("second Follow returned error: %v", err)
	}
	if !second.AlreadyFollowed {
		t.Error("second Follow did not report alreadyFollowed")
	}
	if second.PointsAwarded != 0 {
		t.Errorf("second Follow awarded %d points, want 0", second.PointsAwarded)
	}
	if second.TotalPoints != first.TotalPoints {
		t.Errorf("total changed on repeat follow: %d -> %d", first.TotalPoints, second.TotalPoints)
	}

	var bucket int
	if err := pool.QueryRow(ctx,
		`SELECT reward_social_bonus FROM users WHERE id = $1`, userID).Scan(&bucket); err != nil {
		t.Fatalf("reading bucket: %v", err)
	}
	if bucket != PointsSocialFollow {
		t.Errorf("reward_social_bonus = %d after two follows, want %d", bucket, PointsSocialFollow)
	}
}

func TestFollowPerPlatform(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool)
	ctx := context.Background()
	userID := seedUser(t, pool)

	if _, err := svc.Follow(ctx, userID, PlatformLinkedIn); err != nil {
		t.Fatalf("linkedin Follow returned error: %v", err)
	}
	res, err := svc.Follow(ctx, userID, PlatformInstagram)
	if err != nil {
		t.Fatalf("instagram Follow returned error: %v", err)
	}
	if res.AlreadyFollowed {
		t.Error("instagram Follow reported alreadyFollowed after a linkedin follow")
	}
	if res.TotalPoints != 2*PointsSocialFollow {
		t.Errorf("total after both platforms = %d, want %d", res.TotalPoints, 2*PointsSocialFollow)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool)

	_, err := svc.Follow(context.Background(), uuid.NewString(), PlatformLinkedIn)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Follow(unknown user) error = %v, want ErrUserNotFound", err)
	}
}
