package adaptor

import (
	"net/http"

	"arc-web/internal/dto/request"
	"arc-web/internal/usecase"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

type PurchaseHandler struct {
	service usecase.PurchaseService
	log     *zap.Logger
}

func NewPurchaseHandler(service usecase.PurchaseService, log *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		service: service,
		log:     log.With(zap.String("handler", "purchase")),
	}
}

// Pending handles GET /api/purchases/pending (plugin)
func (h *PurchaseHandler) Pending(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Pending(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list pending purchases")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, resp)
}

// Complete handles POST /api/purchases/complete (plugin)
func (h *PurchaseHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req request.CompletePurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Complete(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "complete purchase")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, resp)
}
