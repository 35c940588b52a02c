// Package rewards owns the point constants and the social-follow bonus.
//
// Points are never stored as a free-running counter: every write recomputes
// or increments the named bucket and the total together, so the invariant
// points == sum(buckets) holds after each statement.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Point values per source. Profile-completion points are derived from the
// completion percentage and live in the profile package.
const (
	PointsPerApplication = 20
	PointsRMPurchase     = 100
	PointsSocialFollow   = 10
)

var (
	// ErrUnknownPlatform is returned for a follow request naming a platform
	// that carries no bonus.
	ErrUnknownPlatform = errors.New("unknown social platform")
	// ErrUserNotFound is returned when the claiming user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Platform is a social network eligible for a follow bonus.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
)

// ParsePlatform normalizes a client-supplied platform name.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linkedin":
		return PlatformLinkedIn, nil
	case "instagram":
		return PlatformInstagram, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
}

// followColumn maps a platform to its idempotency flag column.
func (p Platform) followColumn() string {
	if p == PlatformInstagram {
		return "followed_instagram"
	}
	return "followed_linkedin"
}

// FollowResult reports the outcome of a follow-bonus claim.
type FollowResult struct {
	Platform        Platform `json:"platform"`
	PointsAwarded   int      `json:"pointsAwarded"`
	TotalPoints     int      `json:"totalPoints"`
	AlreadyFollowed bool     `json:"alreadyFollowed"`
}

// Service grants follow bonuses.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Follow awards the one-time bonus for following platform. The award is a
// single guarded update: re-claims match zero rows and return the current
// total with AlreadyFollowed set, never a second bonus.
func (s *Service) Follow(ctx context.Context, userID string, platform Platform) (FollowResult, error) {
	res := FollowResult{Platform: platform}

	col := platform.followColumn()
	query := fmt.Sprintf(`
		UPDATE users
		SET %s = true,
		    reward_social_bonus = reward_social_bonus + $2,
		    points = points + $2,
		    updated_at = NOW()
		WHERE id = $1 AND %s = false
		RETURNING points`, col, col)

	err := s.pool.QueryRow(ctx, query, userID, PointsSocialFollow).Scan(&res.TotalPoints)
	switch {
	case err == nil:
		res.PointsAwarded = PointsSocialFollow
		return res, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Already followed, or no such user; report the unchanged total.
		var total int
		err := s.pool.QueryRow(ctx,
			`SELECT points FROM users WHERE id = $1`, userID).Scan(&total)
		if errors.Is(err, pgx.ErrNoRows) {
			return FollowResult{}, ErrUserNotFound
		}
		if err != nil {
			return FollowResult{}, fmt.Errorf("claiming follow bonus: %w", err)
		}
		res.TotalPoints = total
		res.AlreadyFollowed = true
		return res, nil
	default:
		return FollowResult{}, fmt.Errorf("claiming follow bonus: %w", err)
	}
}
