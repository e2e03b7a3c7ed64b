package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"vuka/internal/service"

	"github.com/gin-gonic/gin"
)

// LygosCallback is the webhook payload from Lygos, keyed on our order id.
type LygosCallback struct {
	Status    string `json:"status"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	ID        string `json:"id"`
}

type LygosWebhookHandler struct {
	svc *service.PaymentService
}

func NewLygosWebhookHandler(svc *service.PaymentService) *LygosWebhookHandler {
	return &LygosWebhookHandler{svc: svc}
}

func (h *LygosWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	log.Printf("[LYGOS callback] raw body: %s", string(body))
	var payload LygosCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	if payload.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order_id required"})
		return
	}
	paymentID := payload.PaymentID
	if paymentID == "" {
		paymentID = payload.ID
	}
	res, err := h.svc.ReconcileLygos(payload.OrderID, paymentID, payload.Status)
	if err != nil {
		h.callbackError(c, err)
		return
	}
	log.Printf("[LYGOS callback] order_id=%s outcome=%s applied=%v", payload.OrderID, res.Outcome, res.Applied)
	c.JSON(http.StatusOK, gin.H{"success": true, "received": true, "applied": res.Applied})
}

func (h *LygosWebhookHandler) callbackError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedTransactionID):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed order id"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
	case errors.Is(err, service.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown plan"})
	default:
		log.Printf("[LYGOS callback] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}
