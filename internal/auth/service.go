package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"findr/backend/internal/notify"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// resetTokenTTL bounds how long a password-reset token stays usable.
const resetTokenTTL = 15 * time.Minute

// Service owns signup, login and password-reset flows for both account
// tables.
type Service struct {
	pool     *pgxpool.Pool
	secret   []byte
	notifier notify.Dispatcher
}

func NewService(pool *pgxpool.Pool, secret string, notifier notify.Dispatcher) *Service {
	return &Service{pool: pool, secret: []byte(secret), notifier: notifier}
}

// accountTable maps a role to its table. Jobseekers and employers live in
// separate tables with separate id spaces.
func accountTable(role string) (string, error) {
	switch role {
	case RoleJobseeker:
		return "users", nil
	case RoleEmployer:
		return "employers", nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// SignupInput creates either account type; the company fields only apply to
// employers.
type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
	Industry    string `json:"industry"`
}

// Session is a successful signup or login.
type Session struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Signup creates an account and returns a signed session.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	if in.Role == "" {
		in.Role = RoleJobseeker
	}
	if _, err := accountTable(in.Role); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	id := uuid.NewString()
	switch in.Role {
	case RoleJobseeker:
		_, err = s.pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, full_name)
			VALUES ($1, $2, $3, $4, $4)`,
			id, email, string(hash), in.Name)
	case RoleEmployer:
		_, err = s.pool.Exec(ctx, `
			INSERT INTO employers (id, email, password_hash, name, company_name, industry)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, email, string(hash), in.Name, in.CompanyName, in.Industry)
	}
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	token, err := NewToken(s.secret, id, in.Role)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	s.notifier.Dispatch(ctx, notify.Event{
		Type:      notify.EventWelcome,
		Recipient: email,
		Params:    map[string]string{"name": in.Name},
	})
	return &Session{Token: token, ID: id, Email: email, Name: in.Name, Role: in.Role}, nil
}

// LoginInput authenticates against the table selected by Role.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login verifies credentials and returns a signed session. Blocked accounts
// are rejected after the password check so the error does not leak which
// emails exist.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if in.Role == "" {
		in.Role = RoleJobseeker
	}
	table, err := accountTable(in.Role)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var (
		id, hash, name, loginStatus string
	)
	err = s.pool.QueryRow(ctx,
		`SELECT id, password_hash, name, login_status FROM `+table+` WHERE email = $1`,
		email).Scan(&id, &hash, &name, &loginStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("loading account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if loginStatus != "active" {
		return nil, ErrAccountBlocked
	}

	token, err := NewToken(s.secret, id, in.Role)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &Session{Token: token, ID: id, Email: email, Name: name, Role: in.Role}, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ForgotPassword issues a reset token for the account. It reports success
// even when the email is unknown so the endpoint cannot be used to test for
// registered addresses.
func (s *Service) ForgotPassword(ctx context.Context, email, role string) error {
	table, err := accountTable(role)
	if err != nil {
		return err
	}
	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}
	email = strings.ToLower(strings.TrimSpace(email))

	tag, err := s.pool.Exec(ctx, `
		UPDATE `+table+` SET reset_token = $2, reset_token_expiry = $3
		WHERE email = $1`,
		email, token, time.Now().Add(resetTokenTTL))
	if err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}
	if tag.RowsAffected() == 1 {
		s.notifier.Dispatch(ctx, notify.Event{
			Type:      notify.EventPasswordReset,
			Recipient: email,
			Params:    map[string]string{"resetToken": token},
		})
	}
	return nil
}

// ValidateResetToken reports whether token is live for the given role.
func (s *Service) ValidateResetToken(ctx context.Context, token, role string) error {
	table, err := accountTable(role)
	if err != nil {
		return err
	}
	var exists bool
	err = s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM `+table+`
			WHERE reset_token = $1 AND reset_token_expiry > NOW()
		)`, token).Scan(&exists)
	if err != nil {
		return fmt.Errorf("validating reset token: %w", err)
	}
	if !exists {
		return ErrInvalidResetToken
	}
	return nil
}

// ResetPassword consumes a live reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, role, newPassword string) error {
	table, err := accountTable(role)
	if err != nil {
		return err
	}
	if newPassword == "" {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+table+` SET
			password_hash = $2,
			reset_token = NULL,
			reset_token_expiry = NULL,
			updated_at = NOW()
		WHERE reset_token = $1 AND reset_token_expiry > NOW()`,
		token, string(hash))
	if err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidResetToken
	}
	return nil
}
