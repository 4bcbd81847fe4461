package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// Handler wires the catalog CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Get("/products/{id}", h.getProduct)
	r.Put("/products/{id}", h.updateProduct)

	r.Get("/sizes", h.listSizes)
	r.Post("/sizes", h.createSize)
	r.Get("/colors", h.listColors)
	r.Post("/colors", h.createColor)
	r.Get("/stores", h.listStores)
	r.Post("/stores", h.createStore)
}

type productForm struct {
	Code     string  `json:"code" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Cost     float64 `json:"cost" validate:"gte=0"`
	IsActive bool    `json:"is_active"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{Search: q.Get("search")}
	if q.Get("is_active") != "" {
		isActive := q.Get("is_active") == "true"
		filters.IsActive = &isActive
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}
	products, err := h.service.ListProducts(r.Context(), filters)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var form productForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.CreateProduct(r.Context(), Product{
		Code:     form.Code,
		Name:     form.Name,
		Price:    form.Price,
		Cost:     form.Cost,
		IsActive: form.IsActive,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var form productForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err = h.service.UpdateProduct(r.Context(), id, Product{
		Code:     form.Code,
		Name:     form.Name,
		Price:    form.Price,
		Cost:     form.Cost,
		IsActive: form.IsActive,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sizeForm struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

func (h *Handler) listSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.service.ListSizes(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if sizes == nil {
		sizes = []SizeLabel{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sizes": sizes})
}

func (h *Handler) createSize(w http.ResponseWriter, r *http.Request) {
	var form sizeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	size, err := h.service.CreateSize(r.Context(), SizeLabel{Name: form.Name, SortOrder: form.SortOrder, IsActive: form.IsActive})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, size)
}

type colorForm struct {
	Name     string `json:"name" validate:"required"`
	Hex      string `json:"hex" validate:"omitempty,hexcolor"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) listColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.service.ListColors(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if colors == nil {
		colors = []ColorLabel{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"colors": colors})
}

func (h *Handler) createColor(w http.ResponseWriter, r *http.Request) {
	var form colorForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	color, err := h.service.CreateColor(r.Context(), ColorLabel{Name: form.Name, Hex: form.Hex, IsActive: form.IsActive})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, color)
}

type storeForm struct {
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.ListStores(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if stores == nil {
		stores = []Store{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stores": stores})
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var form storeForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	store, err := h.service.CreateStore(r.Context(), Store{Name: form.Name, IsActive: form.IsActive})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, store)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !httpx.Mapped(err) {
		h.logger.Error("catalog request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
