// Package interfaces defines the contracts between components, so handlers
// and services depend on behavior rather than concrete clients.
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/mibolsillo/server/internal/models"
)

// Sentinel errors surfaced by store implementations. Callers branch on these
// to map failures to responses.
var (
	// ErrNotFound: the requested row does not exist (or is hidden by the
	// store's row-level policy for the caller's credential).
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied: the store's authorization policy rejected the
	// operation. For expected writes this indicates a deployment defect,
	// not bad input.
	ErrPermissionDenied = errors.New("permission denied by store policy")

	// ErrConflict: a unique constraint was violated, e.g. the row was
	// concurrently created by another request.
	ErrConflict = errors.New("record already exists")
)

// IdentityClient verifies bearer credentials against the external identity
// service. It never mints tokens.
type IdentityClient interface {
	// VerifyToken validates the token and returns the associated identity.
	// An invalid, expired, or unknown token yields an error.
	VerifyToken(ctx context.Context, token string) (*models.AuthUser, error)
}

// DataStore hands out clients to the external relational store.
type DataStore interface {
	// Scoped returns a client authorized with the caller's own token, so the
	// store's row-level policy restricts every query to the caller's rows.
	Scoped(token string) StoreClient

	// Privileged returns a client authorized with the service key, bypassing
	// row-level policy. Used only by registration and admin operations.
	Privileged() StoreClient
}

// StoreClient is a handle on the external store's tables.
type StoreClient interface {
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	CreateProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]*models.UserProfile, error)

	// ListTransactions returns the user's transactions with joined
	// categories, newest date first.
	ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error)

	// ListTransactionsBetween is ListTransactions restricted to
	// from <= date <= to.
	ListTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.Transaction, error)

	CreateTransaction(ctx context.Context, tx *models.NewTransaction) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// ChatProvider generates a reply for a chat message. Implementations are
// interchangeable (live Gemini, deterministic mock) and selected by
// configuration at startup.
type ChatProvider interface {
	GetChatResponse(ctx context.Context, message string) (string, error)
}
