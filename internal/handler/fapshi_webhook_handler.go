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

// FapshiCallback is the webhook payload Fapshi posts after a payment attempt.
// Status has been observed as a string, a number and a boolean, so it is
// decoded loosely.
type FapshiCallback struct {
	Status     any    `json:"status"`
	ExternalID string `json:"externalId"`
	TransID    string `json:"transId"`
}

type FapshiWebhookHandler struct {
	svc *service.PaymentService
}

func NewFapshiWebhookHandler(svc *service.PaymentService) *FapshiWebhookHandler {
	return &FapshiWebhookHandler{svc: svc}
}

// Handle reconciles a Fapshi callback. Non-success statuses are acknowledged
// without mutation; a retry storm helps nobody.
func (h *FapshiWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid body"})
		return
	}
	log.Printf("[FAPSHI callback] raw body: %s", string(body))
	var payload FapshiCallback
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid json"})
		return
	}
	if payload.ExternalID == "" && payload.TransID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "externalId or transId required"})
		return
	}
	res, err := h.svc.ReconcileFapshi(payload.ExternalID, payload.TransID, payload.Status)
	if err != nil {
		h.callbackError(c, err)
		return
	}
	log.Printf("[FAPSHI callback] externalId=%s outcome=%s applied=%v", payload.ExternalID, res.Outcome, res.Applied)
	c.JSON(http.StatusOK, gin.H{"success": true, "received": true, "applied": res.Applied})
}

func (h *FapshiWebhookHandler) callbackError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedTransactionID):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed transaction id"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
	case errors.Is(err, service.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown plan"})
	default:
		log.Printf("[FAPSHI callback] error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
	}
}
