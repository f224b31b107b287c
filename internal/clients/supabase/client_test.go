package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mibolsillo/server/internal/interfaces"
	"github.com/mibolsillo/server/internal/models"
)

func TestVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":    "user-1",
			"email": "ana@example.com",
			"user_metadata": map[string]any{
				"username": "ana87",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	user, err := client.VerifyToken(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "ana87", user.MetadataString("username"))
}

func TestVerifyTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	_, err := client.VerifyToken(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestVerifyTokenEmptyIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	_, err := client.VerifyToken(context.Background(), "hollow-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no associated identity")
}

func TestScopedAndPrivilegedCredentials(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key", WithServiceKey("service-key"))

	_, _ = client.Scoped("caller-token").ListProfiles(context.Background())
	_, _ = client.Privileged().ListProfiles(context.Background())

	require.Len(t, gotAuth, 2)
	assert.Equal(t, "Bearer caller-token", gotAuth[0])
	assert.Equal(t, "Bearer service-key", gotAuth[1])
}

func TestGetProfileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "eq.missing", r.URL.Query().Get("id"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	_, err := client.Scoped("tok").GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestCreateProfilePermissionDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "42501",
			"message": "new row violates row-level security policy",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	_, err := client.Scoped("tok").CreateProfile(context.Background(), &models.UserProfile{ID: "u1"})
	assert.ErrorIs(t, err, interfaces.ErrPermissionDenied)
}

func TestCreateProfileConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "23505",
			"message": "duplicate key value violates unique constraint",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	_, err := client.Scoped("tok").CreateProfile(context.Background(), &models.UserProfile{ID: "u1"})
	assert.ErrorIs(t, err, interfaces.ErrConflict)
}

func TestCreateProfileSendsRepresentationPrefer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		w.Write([]byte(`[{"id":"u1","username":"ana","email":"ana@example.com","role":"user"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	profile, err := client.Privileged().CreateProfile(context.Background(), &models.UserProfile{Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
}

func TestListTransactionsDecodesJoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/transactions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "eq.user-1", q.Get("user_id"))
		assert.Contains(t, q.Get("select"), "categories(")
		assert.Equal(t, "date.desc", q.Get("order"))

		w.Write([]byte(`[
			{
				"id": "tx-1",
				"user_id": "user-1",
				"amount": 45.90,
				"description": "Supermercado",
				"date": "2026-03-10T18:30:00Z",
				"category_id": "cat-food",
				"categories": {"id": "cat-food", "name": "Comida", "type": "expense"}
			},
			{
				"id": "tx-2",
				"user_id": "user-1",
				"amount": 1500,
				"description": "Salario",
				"date": "2026-03-01T09:00:00Z",
				"category_id": "",
				"categories": null
			}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	txs, err := client.Scoped("tok").ListTransactions(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "tx-1", txs[0].ID)
	require.NotNil(t, txs[0].Category)
	assert.Equal(t, "Comida", txs[0].Category.Name)
	assert.Equal(t, models.CategoryExpense, txs[0].Category.Type)
	assert.True(t, txs[0].IsExpense())

	assert.Nil(t, txs[1].Category)
	assert.True(t, txs[1].IsExpense(), "uncategorized rows count as expense")
}

func TestListTransactionsBetweenRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dates := r.URL.Query()["date"]
		require.Len(t, dates, 2)
		assert.Contains(t, dates[0], "gte.")
		assert.Contains(t, dates[1], "lte.")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	txs, err := client.Scoped("tok").ListTransactionsBetween(context.Background(), "user-1", from, to)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestDeleteTransaction(t *testing.T) {
	var gotMethod, gotFilter string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotFilter = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon-key")

	err := client.Scoped("tok").DeleteTransaction(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "eq.tx-1", gotFilter)
}
