package handler

import (
	"net/http"

	"vuka/internal/middleware"
	"vuka/internal/service"

	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	svc *service.AffiliateService
}

func NewAffiliateHandler(svc *service.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{svc: svc}
}

// Join enrolls the caller into the affiliate program and returns their promo
// code. Calling it again returns the existing enrollment.
func (h *AffiliateHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.svc.BecomeAffiliate(userID)
	if err != nil {
		if err == service.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "enrollment failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"promoCode":     u.PromoCode,
		"affiliateTier": u.AffiliateTier,
		"commission":    u.AffiliateCommission,
		"minimumPayout": u.MinimumPayout,
	})
}

// Dashboard reports the caller's commission ledger and referral stats.
func (h *AffiliateHandler) Dashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, referred, err := h.svc.Dashboard(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "not an affiliate"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"promoCode":         u.PromoCode,
		"affiliateTier":     u.AffiliateTier,
		"commission":        u.AffiliateCommission,
		"minimumPayout":     u.MinimumPayout,
		"referralCount":     u.ReferralCount,
		"referredUsers":     referred,
		"affiliateEarnings": u.AffiliateEarnings,
		"affiliateStats":    u.AffiliateStats,
	})
}
