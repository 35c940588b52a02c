// Package order implements premium-service purchases and point spending.
//
// Points are never subtracted from the earned total; spending accumulates in
// deducted_points and the available balance is the difference. The debit is
// a single guarded update, so two concurrent orders can never spend the same
// points twice.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"findr/backend/internal/model"
	"findr/backend/internal/notify"
	"findr/backend/internal/rewards"
)

// ServiceRM is the relationship-manager subscription. Buying it activates
// the RM flag and earns the one-off rmService reward.
const ServiceRM = "rm_service"

// pointValue is the currency discount of one spent point.
const pointValue = 1.0

var (
	ErrInsufficientPoints = errors.New("not enough points available")
	ErrUnknownService     = errors.New("unknown service")
	ErrInvalidPoints      = errors.New("points to use must not be negative")
)

// Available returns the spendable balance.
func Available(points, deducted int) int {
	if deducted > points {
		return 0
	}
	return points - deducted
}

// TotalAmount prices an order after the point discount, never below zero.
func TotalAmount(price float64, pointsUsed int) float64 {
	total := price - float64(pointsUsed)*pointValue
	if total < 0 {
		return 0
	}
	return total
}

// Service implements order placement against PostgreSQL.
type Service struct {
	pool     *pgxpool.Pool
	notifier notify.Dispatcher
}

func NewService(pool *pgxpool.Pool, notifier notify.Dispatcher) *Service {
	return &Service{pool: pool, notifier: notifier}
}

// CreateInput places an order, optionally spending points against the price.
type CreateInput struct {
	Service    string  `json:"service"`
	Price      float64 `json:"price"`
	PointsUsed int     `json:"pointsUsed"`
	CouponCode string  `json:"couponCode"`
}

// Create places an order for userID. The point debit, the RM activation and
// the rmService reward ride on one guarded statement; a balance short of
// PointsUsed matches zero rows and the order is rejected. The +100 reward is
// granted on the first RM purchase only, gated on the rm_service_active flag
// inside the same statement so a repeat purchase cannot re-mint it.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Order, error) {
	svc := strings.ToLower(strings.TrimSpace(in.Service))
	if svc == "" {
		return nil, ErrUnknownService
	}
	if in.PointsUsed < 0 {
		return nil, ErrInvalidPoints
	}

	award := 0
	if svc == ServiceRM {
		award = rewards.PointsRMPurchase
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning order: %w", err)
	}
	defer tx.Rollback(ctx)

	var email string
	err = tx.QueryRow(ctx, `
		UPDATE users SET
			deducted_points   = deducted_points + $2,
			reward_rm_service = reward_rm_service + CASE WHEN rm_service_active THEN 0 ELSE $3 END,
			points            = points + CASE WHEN rm_service_active THEN 0 ELSE $3 END,
			rm_service_active = CASE WHEN $4 THEN true ELSE rm_service_active END,
			updated_at        = NOW()
		WHERE id = $1 AND points - deducted_points - $2 >= 0
		RETURNING email`,
		userID, in.PointsUsed, award, svc == ServiceRM).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInsufficientPoints
	}
	if err != nil {
		return nil, fmt.Errorf("debiting points: %w", err)
	}

	var o model.Order
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, service, price, points_used, coupon_code, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, service, price, points_used, coupon_code,
			total_amount, status, order_date`,
		uuid.NewString(), userID, svc, in.Price, in.PointsUsed, in.CouponCode,
		TotalAmount(in.Price, in.PointsUsed)).
		Scan(&o.ID, &o.UserID, &o.Service, &o.Price, &o.PointsUsed, &o.CouponCode,
			&o.TotalAmount, &o.Status, &o.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("recording order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing order: %w", err)
	}

	if svc == ServiceRM {
		s.notifier.Dispatch(ctx, notify.Event{
			Type:      notify.EventRMServicePurchase,
			Recipient: email,
		})
	}
	return &o, nil
}

// History is a user's orders plus their current balances.
type History struct {
	Orders          []model.Order `json:"orders"`
	RMServiceActive bool          `json:"rmServiceActive"`
	Points          int           `json:"points"`
	DeductedPoints  int           `json:"deductedPoints"`
	Available       int           `json:"available"`
}

// List returns the user's orders, newest first, with point balances.
func (s *Service) List(ctx context.Context, userID string) (*History, error) {
	h := &History{Orders: []model.Order{}}
	err := s.pool.QueryRow(ctx,
		`SELECT rm_service_active, points, deducted_points FROM users WHERE id = $1`,
		userID).Scan(&h.RMServiceActive, &h.Points, &h.DeductedPoints)
	if err != nil {
		return nil, fmt.Errorf("loading balances: %w", err)
	}
	h.Available = Available(h.Points, h.DeductedPoints)

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, service, price, points_used, coupon_code,
			total_amount, status, order_date
		FROM orders WHERE user_id = $1
		ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Service, &o.Price, &o.PointsUsed,
			&o.CouponCode, &o.TotalAmount, &o.Status, &o.OrderDate); err != nil {
			return nil, err
		}
		h.Orders = append(h.Orders, o)
	}
	return h, rows.Err()
}
