package handler

import (
	"bytes"
	"net/http"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/invoice"
	"orderdesk/internal/model"
	"orderdesk/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
	now     func() time.Time
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
		now:     time.Now,
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order, h.logger)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, order, h.logger)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.ScopeAdmin)
}

// ListCourier handles GET /api/courier/orders requests.
func (h *OrderHandler) ListCourier(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.ScopeCourier)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, scope model.Scope) {
	params, ok := h.listParams(w, r, scope)
	if !ok {
		return
	}

	page, err := h.service.List(r.Context(), params)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.OrderPage{Data: *page}, h.logger)
}

func (h *OrderHandler) listParams(w http.ResponseWriter, r *http.Request, scope model.Scope) (model.ListParams, bool) {
	q := r.URL.Query()
	status, err := model.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return model.ListParams{}, false
	}
	return model.ListParams{
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 0),
		Status: status,
		Search: q.Get("search"),
		Scope:  scope,
	}, true
}

// Export handles GET /api/orders/export requests. format=pdf returns a PDF,
// anything else plain text.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	params, ok := h.listParams(w, r, model.ScopeAdmin)
	if !ok {
		return
	}

	orders, err := h.service.Export(r.Context(), params)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	exportDate := h.now().UTC()
	if r.URL.Query().Get("format") == "pdf" {
		var buf bytes.Buffer
		if err := invoice.RenderBatchPDF(&buf, orders, exportDate); err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeAttachment(w, "application/pdf", invoice.BatchFilename(exportDate, "pdf"), buf.Bytes())
		return
	}

	body := invoice.FormatBatch(orders, exportDate)
	writeAttachment(w, "text/plain; charset=utf-8", invoice.BatchFilename(exportDate, "txt"), []byte(body))
}

// Invoice handles GET /api/orders/{id}/invoice requests.
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	order, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		var buf bytes.Buffer
		if err := invoice.RenderPDF(&buf, *order); err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
		writeAttachment(w, "application/pdf", invoice.Filename(*order, "pdf"), buf.Bytes())
		return
	}

	writeAttachment(w, "text/plain; charset=utf-8", invoice.Filename(*order, "txt"), []byte(invoice.FormatInvoice(*order)))
}

// UpdateStatus handles PUT /api/orders/{id}/status and
// PUT /api/courier/{id}/status requests. The caller's role decides which
// edges are open.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), req.Status, auth.RoleFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order, h.logger)
}

// Delete handles DELETE /api/orders/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/analytics/summary requests.
func (h *OrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), queryInt(r, "days", service.DefaultSummaryDays))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}

func (h *OrderHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Order, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "order ID is required", h.logger)
		return nil, false
	}

	order, err := h.service.GetByID(r.Context(), id, auth.RoleFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return nil, false
	}
	if order == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeNotFound, "order not found", h.logger)
		return nil, false
	}
	return order, true
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
