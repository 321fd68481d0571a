package adaptor

import (
	"net/http"

	"arc-web/internal/dto/request"
	"arc-web/internal/usecase"
	"arc-web/pkg/utils"

	"go.uber.org/zap"
)

type LinkHandler struct {
	service usecase.LinkService
	log     *zap.Logger
}

func NewLinkHandler(service usecase.LinkService, log *zap.Logger) *LinkHandler {
	return &LinkHandler{
		service: service,
		log:     log.With(zap.String("handler", "link")),
	}
}

// GenerateCode handles POST /api/link/generate (protected)
func (h *LinkHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.GenerateCode(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "generate link code")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, resp)
}

// Status handles GET /api/link/status (protected)
func (h *LinkHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	resp, err := h.service.Status(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "link status")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, resp)
}

// ValidateCode handles POST /api/link/validate (plugin)
func (h *LinkHandler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.ValidateCode(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "validate link code")
		return
	}

	utils.ResponseRaw(w, http.StatusOK, resp)
}
