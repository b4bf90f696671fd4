package ports

import "context"

// AccountService manages user accounts on the remote store.
//
//go:generate mockgen -source=account.go -destination=mocks/mock_account.go -package=mocks
type AccountService interface {
	// UserExists reports whether an account is registered for email.
	UserExists(ctx context.Context, email string) (bool, error)

	// RequestPasswordReset asks the remote store to email a reset link that
	// leads to redirectURL.
	RequestPasswordReset(ctx context.Context, email, redirectURL string) error
}
