package interfaces

import (
	"context"
	"io"

	"github.com/mibolsillo/server/internal/models"
)

// ChatService answers chat messages, normalizing provider outcomes.
type ChatService interface {
	GetChatResponse(ctx context.Context, message string) (string, error)
}

// ReportService renders financial reports.
type ReportService interface {
	// GenerateMonthly writes a PDF report of the user's transactions for the
	// given calendar month to w. Nothing is written when the fetch fails.
	GenerateMonthly(ctx context.Context, store StoreClient, user *models.UserProfile, year, month int, w io.Writer) error
}
