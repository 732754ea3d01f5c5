package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/card-services/internal/cardsvc/models"
	"github.com/avvvet/card-services/internal/cardsvc/service"
	"github.com/avvvet/card-services/internal/cardsvc/store"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  *chi.Mux
	handler *Handler
	service *service.CardService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	svc := service.NewCardService(fs)
	h := NewHandler(svc)
	h.InitAuth("test-secret")

	r := chi.NewRouter()
	h.SetRoutes(r)
	return &testEnv{router: r, handler: h, service: svc}
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var rsp Response
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rsp))
	}
	return rec, rsp
}

func (e *testEnv) newCard(t *testing.T) *models.Card {
	t.Helper()
	card, err := e.service.GenerateCard(context.Background())
	require.NoError(t, err)
	return card
}

func accountBody(i int) string {
	return fmt.Sprintf(`{"email":"user%d@example.com","password":"pw","token":"tk","usage_limit":"50"}`, i)
}

func TestHealthHandler(t *testing.T) {
	env := setupTest(t)

	rec, rsp := env.do(t, http.MethodGet, "/v1/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, rsp.Code)
}

func TestGetCardHandler(t *testing.T) {
	env := setupTest(t)
	card := env.newCard(t)

	rec, rsp := env.do(t, http.MethodGet, "/v1/cards/"+card.CardSN, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := rsp.Data.(map[string]interface{})
	assert.Equal(t, card.CardSN, data["card_sn"])
	assert.Equal(t, models.CardStatusActive, data["status"])
	assert.EqualValues(t, models.MaxAccountsPerCard, data["remaining"])
}

func TestGetCardHandler_NotFound(t *testing.T) {
	env := setupTest(t)

	rec, rsp := env.do(t, http.MethodGet, "/v1/cards/NOPE", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "card not found", rsp.Message)
}

func TestAddAccountHandler_StatusCodes(t *testing.T) {
	env := setupTest(t)
	card := env.newCard(t)
	path := "/v1/cards/" + card.CardSN + "/accounts"

	for i := 1; i <= models.MaxAccountsPerCard; i++ {
		rec, rsp := env.do(t, http.MethodPost, path, accountBody(i), "")
		require.Equal(t, http.StatusCreated, rec.Code)
		data := rsp.Data.(map[string]interface{})
		assert.EqualValues(t, models.MaxAccountsPerCard-i, data["remaining"])
	}

	rec, _ := env.do(t, http.MethodPost, path, accountBody(6), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddAccountHandler_Errors(t *testing.T) {
	env := setupTest(t)
	card := env.newCard(t)
	disabled := env.newCard(t)
	_, err := env.service.SetStatus(context.Background(), disabled.CardSN, models.CardStatusDisabled)
	require.NoError(t, err)

	tests := []struct {
		name string
		sn   string
		body string
		want int
	}{
		{"malformed json", card.CardSN, `{"email":`, http.StatusBadRequest},
		{"missing password", card.CardSN, `{"email":"a@example.com"}`, http.StatusBadRequest},
		{"unknown card", "NOPE", accountBody(1), http.StatusNotFound},
		{"disabled card", disabled.CardSN, accountBody(1), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := env.do(t, http.MethodPost, "/v1/cards/"+tt.sn+"/accounts", tt.body, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	env := setupTest(t)

	rec, _ := env.do(t, http.MethodPost, "/v1/cards", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/v1/cards", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/v1/cards", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	env := setupTest(t)
	token, err := env.handler.AdminToken(time.Hour)
	require.NoError(t, err)

	rec, rsp := env.do(t, http.MethodPost, "/v1/cards", "", token)
	require.Equal(t, http.StatusCreated, rec.Code)
	sn := rsp.Data.(map[string]interface{})["card_sn"].(string)

	rec, rsp = env.do(t, http.MethodGet, "/v1/cards", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rsp.Data.([]interface{}), 1)

	rec, rsp = env.do(t, http.MethodPatch, "/v1/cards/"+sn+"/status", `{"status":"disabled"}`, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CardStatusDisabled, rsp.Data.(map[string]interface{})["status"])

	rec, _ = env.do(t, http.MethodPatch, "/v1/cards/"+sn+"/status", `{"status":"paused"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPatch, "/v1/cards/NOPE/status", `{"status":"active"}`, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
