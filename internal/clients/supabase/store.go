package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

// restStore implements interfaces.StoreClient against the PostgREST API
// carrying a single bearer credential.
type restStore struct {
	client *Client
	bearer string
}

const categorySelect = "categories(id,name,color,icon,type)"

// transactionRow is the PostgREST row shape; the joined category is embedded
// under the related table's name.
type transactionRow struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	CategoryID  string           `json:"category_id"`
	Categories  *models.Category `json:"categories"`
}

func (r *transactionRow) toModel() *models.Transaction {
	return &models.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
		CategoryID:  r.CategoryID,
		Category:    r.Categories,
	}
}

func (s *restStore) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("id", "eq."+id)
	query.Set("limit", "1")

	var rows []models.UserProfile
	if err := s.client.do(ctx, s.bearer, http.MethodGet, "/rest/v1/users", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &rows[0], nil
}

func (s *restStore) GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("email", "eq."+email)
	query.Set("limit", "1")

	var rows []models.UserProfile
	if err := s.client.do(ctx, s.bearer, http.MethodGet, "/rest/v1/users", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	if len(rows) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return &rows[0], nil
}

func (s *restStore) CreateProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	var rows []models.UserProfile
	if err := s.client.do(ctx, s.bearer, http.MethodPost, "/rest/v1/users", nil, profile, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("store returned no row for created profile")
	}
	return &rows[0], nil
}

func (s *restStore) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("order", "username.asc")

	var rows []models.UserProfile
	if err := s.client.do(ctx, s.bearer, http.MethodGet, "/rest/v1/users", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]*models.UserProfile, len(rows))
	for i := range rows {
		profiles[i] = &rows[i]
	}
	return profiles, nil
}

func (s *restStore) ListTransactions(ctx context.Context, userID string) ([]*models.Transaction, error) {
	query := url.Values{}
	query.Set("select", "*,"+categorySelect)
	query.Set("user_id", "eq."+userID)
	query.Set("order", "date.desc")

	return s.queryTransactions(ctx, query)
}

func (s *restStore) ListTransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.Transaction, error) {
	query := url.Values{}
	query.Set("select", "*,"+categorySelect)
	query.Set("user_id", "eq."+userID)
	query.Add("date", "gte."+from.Format(time.RFC3339Nano))
	query.Add("date", "lte."+to.Format(time.RFC3339Nano))
	query.Set("order", "date.desc")

	return s.queryTransactions(ctx, query)
}

func (s *restStore) queryTransactions(ctx context.Context, query url.Values) ([]*models.Transaction, error) {
	var rows []transactionRow
	if err := s.client.do(ctx, s.bearer, http.MethodGet, "/rest/v1/transactions", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*models.Transaction, len(rows))
	for i := range rows {
		txs[i] = rows[i].toModel()
	}
	return txs, nil
}

func (s *restStore) CreateTransaction(ctx context.Context, tx *models.NewTransaction) (*models.Transaction, error) {
	var rows []transactionRow
	if err := s.client.do(ctx, s.bearer, http.MethodPost, "/rest/v1/transactions", nil, tx, &rows); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("store returned no row for created transaction")
	}
	return rows[0].toModel(), nil
}

func (s *restStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	query := url.Values{}
	query.Set("select", "*,"+categorySelect)
	query.Set("id", "eq."+id)
	query.Set("limit", "1")

	var rows []transactionRow
	if err := s.client.do(ctx, s.bearer, http.MethodGet, "/rest/v1/transactions", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if len(rows) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return rows[0].toModel(), nil
}

func (s *restStore) DeleteTransaction(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)

	if err := s.client.do(ctx, s.bearer, http.MethodDelete, "/rest/v1/transactions", query, nil, nil); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.StoreClient = (*restStore)(nil)
