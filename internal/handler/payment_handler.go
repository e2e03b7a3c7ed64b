package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"vuka/config"
	"vuka/internal/middleware"
	"vuka/internal/service"
	"vuka/pkg/gateway"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	cfg *config.Config
	svc *service.PaymentService
}

func NewPaymentHandler(cfg *config.Config, svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, svc: svc}
}

// Initiate starts a purchase: resolves the gateway for the buyer's country,
// prices the plan and returns the checkout URL. Crediting happens later, on
// reconciliation.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req struct {
		UserID      string `json:"userId"`
		PlanID      string `json:"planId"`
		CountryCode string `json:"countryCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body", "errorCode": "INVALID_BODY"})
		return
	}
	if req.UserID == "" {
		req.UserID = strconv.FormatUint(uint64(middleware.GetUserID(c)), 10)
	}
	res, err := h.svc.CreatePayment(c.Request.Context(), service.CreatePaymentInput{
		UserID:      req.UserID,
		PlanID:      req.PlanID,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		h.paymentError(c, err)
		return
	}
	discountPct := 0
	if res.HasPromoDiscount {
		discountPct = 10
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"paymentUrl":    res.PaymentURL,
		"transactionId": res.TransactionID,
		"gateway":       res.Gateway,
		"amount":        res.Amount,
		"originalAmount": res.OriginalAmount,
		"currency":      "XAF",
		"planDetails": gin.H{
			"id":       res.Plan.ID,
			"name":     res.Plan.Name,
			"type":     res.Plan.Type,
			"coins":    res.Plan.Coins,
			"duration": res.Plan.DurationDays,
		},
		"hasPromoDiscount":   res.HasPromoDiscount,
		"discountApplied":    res.HasPromoDiscount,
		"discountPercentage": discountPct,
		"message":            "Payment initiated. Complete the checkout to activate your plan.",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}

// Status classifies the account behind a transaction id.
func (h *PaymentHandler) Status(c *gin.Context) {
	token := c.Param("transactionId")
	user, status, err := h.svc.StatusByTransactionID(token)
	if err != nil {
		h.paymentError(c, err)
		return
	}
	var endDate any
	if user.SubscriptionEndDate != nil {
		endDate = user.SubscriptionEndDate.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"status":               status,
		"subscriptionPlan":     user.Subscription,
		"isSubscriptionActive": user.IsSubscriptionActive,
		"credits":              user.Credits,
		"subscriptionEndDate":  endDate,
		"hasPromoPerk":         user.UsedPromoCode != "" && !user.PromoPerkUsed,
		"message":              "status " + status,
	})
}

// History reports the caller's last applied payment and balances.
func (h *PaymentHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, payments, err := h.svc.History(userID, 20)
	if err != nil {
		h.paymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"lastPayment":           user.LastPayment,
		"credits":               user.Credits,
		"subscription":          user.Subscription,
		"subscriptionStartDate": user.SubscriptionStartDate,
		"subscriptionEndDate":   user.SubscriptionEndDate,
		"usedPromoCode":         user.UsedPromoCode,
		"promoPerkUsed":         user.PromoPerkUsed,
		"payments":              payments,
	})
}

// paymentError maps the service error taxonomy onto HTTP statuses: validation
// 400, not-found 404, gateway trouble 503, everything else a generic 500.
func (h *PaymentHandler) paymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "userId, planId and countryCode are required", "errorCode": "MISSING_FIELD"})
	case errors.Is(err, service.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unknown plan", "errorCode": "INVALID_PLAN"})
	case errors.Is(err, service.ErrMalformedTransactionID):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed transaction id", "errorCode": "MALFORMED_TRANSACTION_ID"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found", "errorCode": "USER_NOT_FOUND"})
	case errors.Is(err, gateway.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "payment gateway is not configured", "errorCode": "GATEWAY_UNAVAILABLE"})
	case errors.Is(err, gateway.ErrNoPaymentURL):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "gateway returned no payment link", "errorCode": "INVALID_GATEWAY_RESPONSE"})
	case errors.Is(err, gateway.ErrRejected):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "payment gateway rejected the request", "errorCode": "GATEWAY_REJECTED"})
	default:
		log.Printf("[PAYMENT] unclassified error: %v", err)
		msg := "internal error"
		if h.cfg.Server.Env != "production" {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": msg})
	}
}
