package inventory

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
	"github.com/modaro-pos/modaro/internal/shared"
)

// ConsolidationTrigger enqueues an asynchronous consolidation run; nil when
// the deployment runs the pass synchronously only.
type ConsolidationTrigger interface {
	EnqueueConsolidation(ctx context.Context, actor string) error
}

// Handler wires the ledger endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	consolidator *Consolidator
	trigger      ConsolidationTrigger
	validate     *validator.Validate
}

// NewHandler constructs the handler. trigger may be nil.
func NewHandler(logger *slog.Logger, service *Service, consolidator *Consolidator, trigger ConsolidationTrigger) *Handler {
	return &Handler{logger: logger, service: service, consolidator: consolidator, trigger: trigger, validate: validator.New()}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/inventory/movements", h.applyMovement)
	r.Get("/inventory/movements", h.listMovements)
	r.Get("/variants/{variantID}/stock", h.totalStock)
	r.Post("/inventory/consolidate", h.consolidate)
}

type movementRequest struct {
	VariantID int64  `json:"variant_id" validate:"required,gt=0"`
	StoreID   int64  `json:"store_id" validate:"required,gt=0"`
	Delta     int64  `json:"delta" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=purchase sale adjustment return consolidation"`
	Reference string `json:"reference"`
	Actor     string `json:"actor"`
}

func (h *Handler) applyMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := req.Actor
	if actor == "" {
		actor = shared.ActorFromContext(r.Context())
	}
	if actor == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "actor is required")
		return
	}
	movement, err := h.service.Apply(r.Context(), MovementInput{
		VariantID: req.VariantID,
		StoreID:   req.StoreID,
		Delta:     req.Delta,
		Type:      MovementType(req.Type),
		Reference: req.Reference,
		Actor:     actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	variantID, err1 := strconv.ParseInt(q.Get("variant_id"), 10, 64)
	storeID, err2 := strconv.ParseInt(q.Get("store_id"), 10, 64)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "variant_id and store_id are required")
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	movements, err := h.service.Movements(r.Context(), variantID, storeID, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": movements})
}

func (h *Handler) totalStock(w http.ResponseWriter, r *http.Request) {
	variantID, err := strconv.ParseInt(chi.URLParam(r, "variantID"), 10, 64)
	if err != nil || variantID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid variant id")
		return
	}
	total, err := h.service.TotalStock(r.Context(), variantID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"variant_id": variantID, "total": total})
}

type consolidateRequest struct {
	Actor string `json:"actor"`
	Async bool   `json:"async"`
}

func (h *Handler) consolidate(w http.ResponseWriter, r *http.Request) {
	var req consolidateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if req.Actor == "" {
		req.Actor = shared.ActorFromContext(r.Context())
	}
	if req.Actor == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "actor is required")
		return
	}
	if req.Async {
		if h.trigger == nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "async consolidation not configured")
			return
		}
		if err := h.trigger.EnqueueConsolidation(r.Context(), req.Actor); err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"status": "enqueued"})
		return
	}
	report, err := h.consolidator.Run(r.Context(), req.Actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !httpx.Mapped(err) {
		h.logger.Error("inventory request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
