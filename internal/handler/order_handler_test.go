package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id string, role model.Role) (*model.Order, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, params model.ListParams) (*model.OrderPageData, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderPageData), args.Error(1)
}

func (m *MockOrderService) Export(ctx context.Context, params model.ListParams) ([]model.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id, target string, role model.Role) (*model.Order, error) {
	args := m.Called(ctx, id, target, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderService) Summary(ctx context.Context, days int) (*model.Summary, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Summary), args.Error(1)
}

var testOrder = &model.Order{
	ID:        "abc12345-0000-4000-8000-000000000000",
	FullName:  "Nimal Perera",
	Address:   "Kandy",
	Mobile:    "0771234567",
	Product:   "herbal-cream",
	Quantity:  3,
	Status:    model.StatusReceived,
	CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
}

func withRole(r *http.Request, role model.Role) *http.Request {
	return r.WithContext(auth.WithSession(r.Context(), model.Session{Username: string(role), Role: role}))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestOrderHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"fullName":"Nimal","address":"Kandy","mobile":"077","product":"herbal-cream","quantity":"3"}`,
			mockReturn:     testOrder,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid promo code",
			body:           `{"fullName":"Nimal","promoCode":"NOPE1234"}`,
			mockError:      model.ErrInvalidPromoCode,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidPromoCode,
			expectService:  true,
		},
		{
			name:           "Product unavailable",
			body:           `{"product":"soap"}`,
			mockError:      model.ErrProductUnavailable,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeProductUnavailable,
			expectService:  true,
		},
		{
			name:           "Validation error",
			body:           `{}`,
			mockError:      model.NewValidationError("fullName is required"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
			expectService:  true,
		},
		{
			name:           "Infrastructure error",
			body:           `{}`,
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			body:           `{"fullName":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderRequest")).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Error)
			}
			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("GetByID", mock.Anything, testOrder.ID, model.RoleAdmin).Return(testOrder, nil)

		req := withRole(httptest.NewRequest(http.MethodGet, "/api/orders/"+testOrder.ID, nil), model.RoleAdmin)
		req.SetPathValue("id", testOrder.ID)
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var got model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, testOrder.ID, got.ID)
		assert.Equal(t, model.Quantity(3), got.Quantity)
	})

	t.Run("Hidden from courier", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("GetByID", mock.Anything, testOrder.ID, model.RoleCourier).Return(nil, nil)

		req := withRole(httptest.NewRequest(http.MethodGet, "/api/orders/"+testOrder.ID, nil), model.RoleCourier)
		req.SetPathValue("id", testOrder.ID)
		w := httptest.NewRecorder()

		handler.GetByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeNotFound, decodeError(t, w).Error)
	})
}

func TestOrderHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		scope          model.Scope
		expectedParams model.ListParams
		expectedStatus int
	}{
		{
			name:           "Defaults",
			query:          "",
			scope:          model.ScopeAdmin,
			expectedParams: model.ListParams{Page: 1, Limit: 0, Scope: model.ScopeAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "All filters",
			query:          "?page=3&limit=20&status=Sent-To-Courier&search=perera",
			scope:          model.ScopeAdmin,
			expectedParams: model.ListParams{Page: 3, Limit: 20, Status: model.StatusSended, Search: "perera", Scope: model.ScopeAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Status all means no filter",
			query:          "?status=all",
			scope:          model.ScopeCourier,
			expectedParams: model.ListParams{Page: 1, Scope: model.ScopeCourier},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown status",
			query:          "?status=lost",
			scope:          model.ScopeAdmin,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())
			page := &model.OrderPageData{Orders: []model.Order{*testOrder}, Total: 37, Page: 1, Limit: 10}
			mockService.On("List", mock.Anything, tt.expectedParams).Return(page, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/orders"+tt.query, nil)
			w := httptest.NewRecorder()

			if tt.scope == model.ScopeCourier {
				handler.ListCourier(w, req)
			} else {
				handler.List(w, req)
			}

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
				return
			}
			var resp model.OrderPage
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, 37, resp.Data.Total)
			assert.Len(t, resp.Data.Orders, 1)
		})
	}
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		role           model.Role
		body           string
		mockError      error
		expectedStatus int
	}{
		{"Admin sends", model.RoleAdmin, `{"status":"sended"}`, nil, http.StatusOK},
		{"Courier illegal edge", model.RoleCourier, `{"status":"delivered"}`, model.NewInvalidTransitionError(model.StatusSended, model.StatusDelivered, model.RoleCourier), http.StatusConflict},
		{"Missing order", model.RoleAdmin, `{"status":"sended"}`, model.ErrNotFound, http.StatusNotFound},
		{"Bad body", model.RoleAdmin, `nope`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			var target model.StatusUpdateRequest
			validBody := json.Unmarshal([]byte(tt.body), &target) == nil
			if validBody {
				if tt.mockError != nil {
					mockService.On("UpdateStatus", mock.Anything, "o-1", target.Status, tt.role).Return(nil, tt.mockError)
				} else {
					updated := *testOrder
					updated.Status = model.StatusSended
					mockService.On("UpdateStatus", mock.Anything, "o-1", target.Status, tt.role).Return(&updated, nil)
				}
			}

			req := withRole(httptest.NewRequest(http.MethodPut, "/api/orders/o-1/status", bytes.NewBufferString(tt.body)), tt.role)
			req.SetPathValue("id", "o-1")
			w := httptest.NewRecorder()

			handler.UpdateStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if validBody {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestOrderHandler_Delete(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("Delete", mock.Anything, "present").Return(nil)
	mockService.On("Delete", mock.Anything, "absent").Return(model.ErrNotFound)

	for id, expected := range map[string]int{"present": http.StatusNoContent, "absent": http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()

		handler.Delete(w, req)

		assert.Equal(t, expected, w.Code, id)
	}
}

func TestOrderHandler_Invoice(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("GetByID", mock.Anything, testOrder.ID, model.RoleAdmin).Return(testOrder, nil)

	t.Run("Text", func(t *testing.T) {
		req := withRole(httptest.NewRequest(http.MethodGet, "/api/orders/x/invoice", nil), model.RoleAdmin)
		req.SetPathValue("id", testOrder.ID)
		w := httptest.NewRecorder()

		handler.Invoice(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-INV-ABC12345.txt")
		assert.Contains(t, w.Body.String(), "INV-ABC12345")
		assert.Contains(t, w.Body.String(), "Rs. 4,700")
	})

	t.Run("PDF", func(t *testing.T) {
		req := withRole(httptest.NewRequest(http.MethodGet, "/api/orders/x/invoice?format=pdf", nil), model.RoleAdmin)
		req.SetPathValue("id", testOrder.ID)
		w := httptest.NewRecorder()

		handler.Invoice(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "invoice-INV-ABC12345.pdf")
		assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	})
}

func TestOrderHandler_Export(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	handler.now = func() time.Time { return time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC) }
	mockService.On("Export", mock.Anything, model.ListParams{Page: 1, Scope: model.ScopeAdmin}).Return([]model.Order{*testOrder}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/export", nil)
	w := httptest.NewRecorder()

	handler.Export(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-2025-03-05.txt")
	assert.Contains(t, w.Body.String(), "2025-03-05")
}

func TestOrderHandler_Summary(t *testing.T) {
	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("Summary", mock.Anything, 30).Return(&model.Summary{TotalOrders: 4, TotalRevenue: 80600}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary?days=30", nil)
	w := httptest.NewRecorder()

	handler.Summary(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got model.Summary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, int64(80600), got.TotalRevenue)
}

func TestWriteJSON_EncodeFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	w := httptest.NewRecorder()

	writeJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logs.String(), "failed to encode response")
	assert.Contains(t, logs.String(), `"level":"error"`)
}
