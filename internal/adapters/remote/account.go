package remote

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/zerr"
)

// UserExists reports whether a row of the users resource carries email.
// Addresses are compared case-insensitively.
func (s *Store) UserExists(ctx context.Context, email string) (bool, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}

	users, err := s.List(ctx, domain.ResourceUser)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if v, ok := u.Fields["email"].(string); ok && strings.EqualFold(strings.TrimSpace(v), addr) {
			return true, nil
		}
	}
	return false, nil
}

// RequestPasswordReset records a reset request. Delivering the email is
// left to the database, e.g. a trigger or a job polling the table.
func (s *Store) RequestPasswordReset(ctx context.Context, email, redirectURL string) error {
	addr, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO password_resets (email, redirect_url, requested_at) VALUES (?, ?, ?)`),
		addr, redirectURL, s.now().UTC().Format(timeLayout))
	if err != nil {
		return queryFailed(err, "email", addr)
	}
	return nil
}

// PasswordResets returns the redirect URLs requested for email, oldest first.
func (s *Store) PasswordResets(ctx context.Context, email string) ([]string, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT redirect_url FROM password_resets WHERE email = ? ORDER BY requested_at`), addr)
	if err != nil {
		return nil, queryFailed(err, "email", addr)
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, queryFailed(err, "email", addr)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(err, "email", addr)
	}
	return urls, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidEmail, "email"), "email", email)
	}
	return strings.ToLower(addr.Address), nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
