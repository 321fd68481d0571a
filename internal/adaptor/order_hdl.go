package adaptor

import (
	"net/http"

	"arc-web/internal/dto/request"
	"arc-web/internal/usecase"
	"arc-web/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

// ListMine handles GET /api/user/orders (protected)
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	orders, err := h.service.ListByUser(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "list orders")
		return
	}

	utils.ResponseSuccess(w, "Orders retrieved successfully", orders)
}

// MarkPaid handles POST /api/admin/orders/{id}/paid (admin only)
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "mark order paid")
		return
	}

	utils.ResponseSuccess(w, "Order marked as paid", order)
}
