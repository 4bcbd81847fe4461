package variant

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
	"github.com/modaro-pos/modaro/internal/shared"
)

// Handler wires the variant endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers variant routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products/{productID}/variants", h.list)
	r.Post("/products/{productID}/variants/plan", h.plan)
	r.Post("/products/{productID}/variants/apply", h.apply)
}

type pairValue struct {
	SizeID  int64  `json:"size_id" validate:"required,gt=0"`
	ColorID int64  `json:"color_id" validate:"required,gt=0"`
	Stock   *int64 `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Barcode string `json:"barcode,omitempty"`
}

// An empty size or color list is allowed: the desired matrix is then empty
// and applying it retires every variant of the product.
type matrixRequest struct {
	SizeIDs  []int64     `json:"size_ids" validate:"omitempty,dive,gt=0"`
	ColorIDs []int64     `json:"color_ids" validate:"omitempty,dive,gt=0"`
	Pairs    []pairValue `json:"pairs" validate:"dive"`
	StoreID  int64       `json:"store_id"`
	Actor    string      `json:"actor"`
}

func (req matrixRequest) toMatrixRequest() MatrixRequest {
	out := MatrixRequest{
		SizeIDs:       req.SizeIDs,
		ColorIDs:      req.ColorIDs,
		StockByPair:   map[PairKey]int64{},
		BarcodeByPair: map[PairKey]string{},
	}
	for _, pair := range req.Pairs {
		key := PairKey{SizeID: pair.SizeID, ColorID: pair.ColorID}
		if pair.Stock != nil {
			out.StockByPair[key] = *pair.Stock
		}
		if pair.Barcode != "" {
			out.BarcodeByPair[key] = pair.Barcode
		}
	}
	return out
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	variants, err := h.service.ListByProduct(r.Context(), productID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if variants == nil {
		variants = []Variant{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"variants": variants})
}

func (h *Handler) plan(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req matrixRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	plan, err := h.service.BuildPlan(r.Context(), productID, req.toMatrixRequest())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plan)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req matrixRequest
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
	plan, result, err := h.service.Reconcile(r.Context(), productID, req.StoreID, req.toMatrixRequest(), actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"plan": plan, "result": result})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !httpx.Mapped(err) {
		h.logger.Error("variant request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
