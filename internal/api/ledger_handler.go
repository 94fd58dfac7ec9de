package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/loyalty-api/internal/api/shared"
	"github.com/phrazzld/loyalty-api/internal/domain"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/phrazzld/loyalty-api/internal/redact"
	"github.com/phrazzld/loyalty-api/internal/service"
)

// EmailParam is the chi URL parameter naming an owner.
const EmailParam = "email"

// Ledger is the set of ledger operations the HTTP layer needs.
type Ledger interface {
	RegisterOwner(ctx context.Context, name, email string) (domain.Card, error)
	UnregisterOwner(ctx context.Context, email string) error
	ProcessMoneyPurchase(ctx context.Context, email string, pence int) (domain.Card, error)
	ProcessPointsPurchase(ctx context.Context, email string, points int) (domain.Card, error)
	Card(ctx context.Context, email string) (domain.Card, error)
	Stats(ctx context.Context) service.Stats
}

var _ Ledger = (*service.LedgerService)(nil)

// LedgerHandler handles owner, card and stats requests.
type LedgerHandler struct {
	ledger Ledger
	logger *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger Ledger, logger *slog.Logger) *LedgerHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LedgerHandler")
	}

	return &LedgerHandler{
		ledger: ledger,
		logger: logger.With(slog.String("component", "ledger_handler")),
	}
}

// RegisterOwner handles POST /api/owners.
func (h *LedgerHandler) RegisterOwner(w http.ResponseWriter, r *http.Request) {
	var req RegisterOwnerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	card, err := h.ledger.RegisterOwner(r.Context(), req.Name, req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// UnregisterOwner handles DELETE /api/owners/{email}.
func (h *LedgerHandler) UnregisterOwner(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pathEmail(w, r)
	if !ok {
		return
	}

	if err := h.ledger.UnregisterOwner(r.Context(), email); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCard handles GET /api/owners/{email}/card.
func (h *LedgerHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pathEmail(w, r)
	if !ok {
		return
	}

	card, err := h.ledger.Card(r.Context(), email)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// MoneyPurchase handles POST /api/owners/{email}/money-purchases.
func (h *LedgerHandler) MoneyPurchase(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pathEmail(w, r)
	if !ok {
		return
	}

	var req MoneyPurchaseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	card, err := h.ledger.ProcessMoneyPurchase(r.Context(), email, *req.Pence)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PointsPurchase handles POST /api/owners/{email}/points-purchases.
func (h *LedgerHandler) PointsPurchase(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pathEmail(w, r)
	if !ok {
		return
	}

	var req PointsPurchaseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleValidationError(w, r, err)
		return
	}

	card, err := h.ledger.ProcessPointsPurchase(r.Context(), email, *req.Points)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetStats handles GET /api/stats.
func (h *LedgerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(h.ledger.Stats(r.Context())))
}

// pathEmail extracts and unescapes the owner email from the URL. It writes a
// 400 response and returns false when the parameter is missing or malformed.
func (h *LedgerHandler) pathEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	raw := chi.URLParam(r, EmailParam)
	email, err := url.PathUnescape(raw)
	if err == nil {
		email = strings.TrimSpace(email)
	}
	if err != nil || email == "" {
		log.Debug("invalid email path parameter", slog.String("value", redact.Email(raw)))
		HandleAPIError(w, r, domain.NewValidationError(EmailParam, "is required", domain.ErrValidation), "")
		return "", false
	}
	return email, true
}
