package adaptor

import (
	"net/http"

	"arc-web/internal/usecase"
	"arc-web/pkg/utils"
)

type ProductHandler struct {
	service usecase.ProductService
}

func NewProductHandler(service usecase.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, "Products retrieved successfully", h.service.List())
}
