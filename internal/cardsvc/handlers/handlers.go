package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avvvet/card-services/internal/cardsvc/models"
	"github.com/avvvet/card-services/internal/cardsvc/service"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	cardService *service.CardService
	tokenAuth   *jwtauth.JWTAuth
}

func NewHandler(cardService *service.CardService) *Handler {
	return &Handler{cardService: cardService}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

type accountRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Token      string `json:"token"`
	UsageLimit string `json:"usage_limit"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type cardView struct {
	*models.Card
	Remaining int `json:"remaining"`
}

func newCardView(c *models.Card) cardView {
	return cardView{Card: c, Remaining: c.Remaining()}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Error encoding response: %s", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "card service is running",
		Code:    http.StatusOK,
		Data:    map[string]string{"time": time.Now().UTC().Format(time.RFC3339)},
	})
}

// GetCardHandler serves GET /v1/cards/{cardSN}.
func (h *Handler) GetCardHandler(w http.ResponseWriter, r *http.Request) {
	card, err := h.cardService.GetCard(r.Context(), chi.URLParam(r, "cardSN"))
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "card found",
		Code:    http.StatusOK,
		Data:    newCardView(card),
	})
}

// AddAccountHandler serves POST /v1/cards/{cardSN}/accounts.
func (h *Handler) AddAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{
			Message: "invalid request body",
			Code:    http.StatusBadRequest,
			Error:   err.Error(),
		})
		return
	}

	card, err := h.cardService.AddAccount(r.Context(), chi.URLParam(r, "cardSN"), models.Account{
		Email:      req.Email,
		Password:   req.Password,
		Token:      req.Token,
		UsageLimit: req.UsageLimit,
	})
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "account added to card",
		Code:    http.StatusCreated,
		Data:    newCardView(card),
	})
}

func (h *Handler) GenerateCardHandler(w http.ResponseWriter, r *http.Request) {
	card, err := h.cardService.GenerateCard(r.Context())
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "card generated",
		Code:    http.StatusCreated,
		Data:    newCardView(card),
	})
}

func (h *Handler) ListCardsHandler(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardService.ListCards(r.Context())
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	views := make([]cardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, newCardView(c))
	}

	h.CreateResponse(w, Response{
		Message: "cards",
		Code:    http.StatusOK,
		Data:    views,
	})
}

func (h *Handler) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{
			Message: "invalid request body",
			Code:    http.StatusBadRequest,
			Error:   err.Error(),
		})
		return
	}

	card, err := h.cardService.SetStatus(r.Context(), chi.URLParam(r, "cardSN"), req.Status)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "card status updated",
		Code:    http.StatusOK,
		Data:    newCardView(card),
	})
}

func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	rsp := Response{Error: err.Error()}

	switch {
	case errors.Is(err, service.ErrCardNotFound):
		rsp.Code, rsp.Message = http.StatusNotFound, "card not found"
	case errors.Is(err, service.ErrCardFull):
		rsp.Code, rsp.Message = http.StatusConflict, "card has reached its account limit"
	case errors.Is(err, service.ErrCardDisabled):
		rsp.Code, rsp.Message = http.StatusForbidden, "card is disabled"
	case errors.Is(err, service.ErrInvalidAccount), errors.Is(err, service.ErrInvalidStatus):
		rsp.Code, rsp.Message = http.StatusBadRequest, "invalid request"
	default:
		log.Errorf("Error handling card request: %s", err)
		rsp.Code, rsp.Message, rsp.Error = http.StatusInternalServerError, "internal server error", ""
	}

	h.CreateResponse(w, rsp)
}
