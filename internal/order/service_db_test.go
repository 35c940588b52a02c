package order

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/db"
	"findr/backend/internal/notify"
	"findr/backend/internal/rewards"
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

// seedUser inserts a jobseeker holding the given earned points.
func seedUser(t *testing.T, pool *pgxpool.Pool, points int) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, name, points, reward_complete_profile)
		VALUES ($1, $2, 'x', 'Buyer', $3, $3)`,
		id, fmt.Sprintf("%s@example.test", id), points)
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return id
}

type balances struct {
	points    int
	deducted  int
	rmBucket  int
	rmActive  bool
	numOrders int
}

func readBalances(t *testing.T, pool *pgxpool.Pool, userID string) balances {
	t.Helper()
	var b balances
	err := pool.QueryRow(context.Background(), `
		SELECT points, deducted_points, reward_rm_service, rm_service_active,
			(SELECT COUNT(*) FROM orders WHERE user_id = users.id)
		FROM users WHERE id = $1`, userID).
		Scan(&b.points, &b.deducted, &b.rmBucket, &b.rmActive, &b.numOrders)
	if err != nil {
		t.Fatalf("reading balances: %v", err)
	}
	return b
}

// An order spending more points than the available balance is rejected
// whole: no debit, no order row.
func TestCreateInsufficientPoints(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool, notify.NopDispatcher{})
	ctx := context.Background()
	userID := seedUser(t, pool, 250)

	_, err := svc.Create(ctx, userID, CreateInput{
		Service:    "cv_review",
		Price:      400,
		PointsUsed: 300,
	})
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("Create error = %v, want ErrInsufficientPoints", err)
	}

	b := readBalances(t, pool, userID)
	if b.points != 250 || b.deducted != 0 {
		t.Errorf("balances changed by rejected order: points=%d deducted=%d", b.points, b.deducted)
	}
	if b.numOrders != 0 {
		t.Errorf("rejected order left %d order rows", b.numOrders)
	}
}

// The +100 rmService reward is minted on the first RM purchase only; a
// repeat purchase records an order but earns nothing.
func TestRMRewardFirstPurchaseOnly(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool, notify.NopDispatcher{})
	ctx := context.Background()
	userID := seedUser(t, pool, 0)

	if _, err := svc.Create(ctx, userID, CreateInput{Service: ServiceRM, Price: 500}); err != nil {
		t.Fatalf("first RM purchase returned error: %v", err)
	}
	b := readBalances(t, pool, userID)
	if !b.rmActive {
		t.Error("rm_service_active not set by RM purchase")
	}
	if b.rmBucket != rewards.PointsRMPurchase || b.points != rewards.PointsRMPurchase {
		t.Errorf("after first purchase reward=%d points=%d, want both %d",
			b.rmBucket, b.points, rewards.PointsRMPurchase)
	}

	if _, err := svc.Create(ctx, userID, CreateInput{Service: ServiceRM, Price: 500}); err != nil {
		t.Fatalf("second RM purchase returned error: %v", err)
	}
	b = readBalances(t, pool, userID)
	if b.rmBucket != rewards.PointsRMPurchase || b.points != rewards.PointsRMPurchase {
		t.Errorf("repeat purchase re-minted reward: reward=%d points=%d", b.rmBucket, b.points)
	}
	if b.numOrders != 2 {
		t.Errorf("order rows = %d, want 2", b.numOrders)
	}
}

// Spending points on the RM purchase itself debits and rewards in the same
// statement.
func TestRMPurchaseWithPoints(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool, notify.NopDispatcher{})
	ctx := context.Background()
	userID := seedUser(t, pool, 150)

	o, err := svc.Create(ctx, userID, CreateInput{Service: ServiceRM, Price: 500, PointsUsed: 100})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if o.TotalAmount != 400 {
		t.Errorf("TotalAmount = %v, want 400", o.TotalAmount)
	}

	b := readBalances(t, pool, userID)
	if b.points != 150+rewards.PointsRMPurchase {
		t.Errorf("points = %d, want %d", b.points, 150+rewards.PointsRMPurchase)
	}
	if b.deducted != 100 {
		t.Errorf("deducted_points = %d, want 100", b.deducted)
	}
}
