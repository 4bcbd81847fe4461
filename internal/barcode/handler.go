package barcode

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/modaro-pos/modaro/internal/platform/httpx"
)

// Handler exposes the codec over HTTP. Everything here is pure, so the
// handler has no storage dependencies.
type Handler struct {
	ean13Prefix string
	validate    *validator.Validate
}

// NewHandler constructs the handler. An empty prefix falls back to
// DefaultEAN13Prefix.
func NewHandler(ean13Prefix string) *Handler {
	return &Handler{ean13Prefix: ean13Prefix, validate: validator.New()}
}

// MountRoutes registers barcode routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/barcodes/encode", h.encode)
	r.Get("/barcodes/{code}", h.decode)
}

type encodeRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	SizeName    string `json:"size_name" validate:"required"`
	ColorName   string `json:"color_name" validate:"required"`
	EAN13       bool   `json:"ean13"`
}

func (h *Handler) encode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	compact := Encode(req.ProductCode, req.SizeName, req.ColorName)
	resp := map[string]any{"barcode": compact}
	if req.EAN13 {
		resp["barcode"] = EncodeEAN13(req.ProductCode, req.SizeName, req.ColorName, h.ean13Prefix)
		resp["compact"] = compact
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	components, ok := Decode(code)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "barcode has an unsupported length or non-digit characters")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"valid":      components.Valid,
		"components": components,
	})
}
