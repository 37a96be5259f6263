package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rocjay1/spend-sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAccounts_Get(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	mockDb.GetAccountsFunc = func(ctx context.Context) ([]models.AccountOwnership, error) {
		return []models.AccountOwnership{{ID: "1", Key: "ally-1111", Name: "Ally Checking", Mode: models.ModeSpending}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.AccountOwnership
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, models.ModeSpending, got[0].Mode)
}

func TestHandleAccounts_PostDerivesKeyAndID(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	var saved models.AccountOwnership
	mockDb.SaveAccountFunc = func(ctx context.Context, account models.AccountOwnership) error {
		saved = account
		return nil
	}

	body, _ := json.Marshal(map[string]string{"name": "Chase Freedom Visa ending 4821", "mode": "payment"})
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chase-freedom-4821", saved.Key)
	assert.Equal(t, models.ModePayment, saved.Mode)
	_, err := uuid.Parse(saved.ID)
	assert.NoError(t, err)
}

func TestHandleAccounts_PostNormalizesExplicitKey(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	var saved models.AccountOwnership
	mockDb.SaveAccountFunc = func(ctx context.Context, account models.AccountOwnership) error {
		saved = account
		return nil
	}

	body, _ := json.Marshal(map[string]string{"key": "Ally Checking ending 1111", "mode": "spending"})
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ally-1111", saved.Key)
}

func TestHandleAccounts_PostUnknownModeIsNotMine(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	var saved models.AccountOwnership
	mockDb.SaveAccountFunc = func(ctx context.Context, account models.AccountOwnership) error {
		saved = account
		return nil
	}

	body, _ := json.Marshal(map[string]string{"id": "keep-me", "key": "landlord", "mode": "sometimes"})
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "keep-me", saved.ID)
	assert.Equal(t, models.ModeNotMine, saved.Mode)
}

func TestHandleAccounts_PostMissingName(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{}}

	req := httptest.NewRequest(http.MethodPost, "/api/accounts", bytes.NewBufferString(`{"mode":"spending"}`))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAccounts_Delete(t *testing.T) {
	mockDb := &MockDatabaseClient{}
	deps := &Dependencies{Database: mockDb}

	deleted := ""
	mockDb.DeleteAccountFunc = func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/accounts?id=abc", nil)
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", deleted)
}

func TestHandleAccounts_DeleteErrors(t *testing.T) {
	mockDb := &MockDatabaseClient{
		DeleteAccountFunc: func(ctx context.Context, id string) error { return errors.New("boom") },
	}
	deps := &Dependencies{Database: mockDb}

	w := httptest.NewRecorder()
	deps.HandleAccounts(w, httptest.NewRequest(http.MethodDelete, "/api/accounts", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	deps.HandleAccounts(w, httptest.NewRequest(http.MethodDelete, "/api/accounts?id=abc", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
