package handler

import (
	"errors"
	"log"
	"net/http"

	"vuka/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes operator-triggered re-processing of transactions whose
// webhook never arrived or was lost.
type AdminHandler struct {
	svc *service.PaymentService
}

func NewAdminHandler(svc *service.PaymentService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// VerifyTransaction polls the owning gateway for a transaction's status and
// credits the account if the gateway reports success. When the gateway is
// unreachable the locally stored snapshot is returned instead of an error.
func (h *AdminHandler) VerifyTransaction(c *gin.Context) {
	var req struct {
		TransactionID string `json:"transactionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "transactionId required"})
		return
	}
	res, err := h.svc.VerifyByTransactionID(c.Request.Context(), req.TransactionID)
	if err != nil {
		h.verifyError(c, err)
		return
	}
	h.respond(c, res)
}

// VerifyFapshi re-processes by the Fapshi-side transaction id.
func (h *AdminHandler) VerifyFapshi(c *gin.Context) {
	var req struct {
		TransID string `json:"transId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "transId required"})
		return
	}
	res, err := h.svc.VerifyFapshiByTransID(c.Request.Context(), req.TransID)
	if err != nil {
		h.verifyError(c, err)
		return
	}
	h.respond(c, res)
}

func (h *AdminHandler) respond(c *gin.Context, res *service.VerifyResult) {
	msg := "gateway status: " + res.Outcome.String()
	if !res.Remote {
		msg = "gateway unreachable; returning locally stored records"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"remoteChecked": res.Remote,
		"gatewayStatus": res.Status,
		"outcome":       res.Outcome.String(),
		"applied":       res.Applied,
		"message":       msg,
		"user": gin.H{
			"id":           res.User.ID,
			"credits":      res.User.Credits,
			"subscription": res.User.Subscription,
			"lastPayment":  res.User.LastPayment,
		},
	})
}

func (h *AdminHandler) verifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField), errors.Is(err, service.ErrMalformedTransactionID):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
	case errors.Is(err, service.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown plan"})
	default:
		log.Printf("[ADMIN verify] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}
