// Package handler exposes the shopping core over HTTP. It binds and
// validates transport payloads; all domain decisions live in the service.
package handler

import (
	"net/http"
	"time"

	"farebridge_backend/internal/shopping/service"
	"farebridge_backend/internal/shopping/transport"
	"farebridge_backend/platform/httpkit"
	"farebridge_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles shopping HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new shopping handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateRequest stores a shopping request and returns its flight request id.
func (h *Handler) CreateRequest(c *gin.Context) {
	var req transport.CreateShoppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	shoppingReq, err := req.ToDomain()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	created, err := h.svc.CreateRequest(c.Request.Context(), shoppingReq)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.CreateShoppingResponse{
		FlightRequestID: created.FlightRequestID,
		CreatedAt:       created.CreatedAt,
	})
}

// ProcessOffers runs offer distribution for a stored shopping request.
func (h *Handler) ProcessOffers(c *gin.Context) {
	flightRequestID, ok := h.flightRequestID(c)
	if !ok {
		return
	}

	var req transport.ProcessOffersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	set, err := h.svc.Distribute(c.Request.Context(), flightRequestID, req.SessionID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, set)
}

// GetOffers returns a previously produced offer set from the cache.
func (h *Handler) GetOffers(c *gin.Context) {
	flightRequestID, ok := h.flightRequestID(c)
	if !ok {
		return
	}

	var query transport.GetOffersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	set, err := h.svc.GetOffers(c.Request.Context(), flightRequestID, query.SessionID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, set)
}

// VerifyPrice re-verifies one cached offer against its supplier.
func (h *Handler) VerifyPrice(c *gin.Context) {
	offerID := c.Param("offerId")
	if _, err := uuid.Parse(offerID); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "offerId must be a UUID")
		return
	}

	var req transport.VerifyPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	offer, err := h.svc.VerifyPrice(c.Request.Context(), offerID, req.OfficeID, req.IncludeFareRules)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.VerifyPriceResponse{
		Offer:           offer,
		ClientReference: req.ClientReference,
		VerifiedAt:      time.Now().UTC(),
	})
}

func (h *Handler) flightRequestID(c *gin.Context) (string, bool) {
	id := c.Param("flightRequestId")
	if _, err := uuid.Parse(id); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "flightRequestId must be a UUID")
		return "", false
	}
	return id, true
}
