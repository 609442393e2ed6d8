package handler

import (
	"net/http"

	"orderdesk/internal/listing"
	"orderdesk/internal/model"
	"orderdesk/internal/service"

	"github.com/rs/zerolog"
)

// InquiryHandler handles storefront contact messages.
type InquiryHandler struct {
	service service.InquiryService
	logger  zerolog.Logger
}

// NewInquiryHandler creates a new inquiry handler.
func NewInquiryHandler(service service.InquiryService, logger zerolog.Logger) *InquiryHandler {
	return &InquiryHandler{
		service: service,
		logger:  logger.With().Str("handler", "inquiry").Logger(),
	}
}

type inquiryPage struct {
	Data struct {
		Inquiries []model.Inquiry `json:"inquiries"`
		Total     int             `json:"total"`
		Page      int             `json:"page"`
		Limit     int             `json:"limit"`
	} `json:"data"`
}

// Create handles POST /api/inquiries requests.
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.InquiryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	inquiry, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, inquiry, h.logger)
}

// List handles GET /api/inquiries requests.
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := max(queryInt(r, "page", 1), 1)
	limit := listing.NormalizeLimit(queryInt(r, "limit", 0))

	items, total, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var resp inquiryPage
	resp.Data.Inquiries = items
	resp.Data.Total = total
	resp.Data.Page = page
	resp.Data.Limit = limit
	writeJSON(w, http.StatusOK, resp, h.logger)
}
