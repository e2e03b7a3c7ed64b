package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"math"

	"vuka/internal/catalog"
	"vuka/internal/domain"
	"vuka/internal/models"
)

// AffiliateService accrues commission for affiliates when users they referred
// pay. It is best-effort accounting: every failure is logged and swallowed,
// never propagated into the payment path that triggered it.
type AffiliateService struct {
	users UserStore
	cat   *catalog.Catalog
}

func NewAffiliateService(users UserStore, cat *catalog.Catalog) *AffiliateService {
	return &AffiliateService{users: users, cat: cat}
}

// ProcessCommission credits the referring affiliate for one paid purchase.
// amountXAF is the plan's list price; the ledger itself is kept in USD.
func (s *AffiliateService) ProcessCommission(referred *models.User, amountXAF int64, planID string) {
	if referred == nil || referred.UsedPromoCode == "" {
		return
	}
	aff, err := s.users.GetAffiliateByPromoCode(referred.UsedPromoCode)
	if err != nil || aff == nil {
		// Stale or revoked code on the buyer; nothing to pay out.
		return
	}

	rate := aff.AffiliateCommission
	if rate <= 0 {
		rate = s.cat.CommissionRate(aff.AffiliateTier)
	}
	commissionXAF := float64(amountXAF) * rate / 100
	commissionUSD := commissionXAF / domain.XAFPerUSD

	aff.AffiliateEarnings.Total += commissionUSD
	aff.AffiliateEarnings.Available += commissionUSD

	minPayout := aff.MinimumPayout
	if minPayout <= 0 {
		minPayout = domain.DefaultMinimumPayoutUSD
	}
	// Threshold crossing sweeps the whole available balance, never a slice of it.
	if aff.AffiliateEarnings.Available >= minPayout && aff.AffiliateEarnings.Available > 0 {
		aff.AffiliateEarnings.Pending += aff.AffiliateEarnings.Available
		aff.AffiliateEarnings.Available = 0
	}

	aff.ReferralCount++
	aff.AffiliateStats.TotalReferrals++
	if _, ok := s.cat.ResolvePlan(planID); ok {
		aff.AffiliateStats.ActiveReferrals++
	}
	if aff.ReferralCount > 0 {
		aff.AffiliateStats.ConversionRate = math.Round(float64(aff.AffiliateStats.ActiveReferrals) / float64(aff.ReferralCount) * 100)
		aff.AffiliateStats.AverageCommission = aff.AffiliateEarnings.Total / float64(aff.ReferralCount)
	} else {
		aff.AffiliateStats.ConversionRate = 0
		aff.AffiliateStats.AverageCommission = 0
	}

	if err := s.users.AddReferral(aff.ID, referred.ID); err != nil {
		log.Printf("[AFFILIATE] failed to record referral affiliate=%d referred=%d: %v", aff.ID, referred.ID, err)
	}
	if err := s.users.Update(aff); err != nil {
		log.Printf("[AFFILIATE] failed to persist commission affiliate=%d amount_usd=%.4f: %v", aff.ID, commissionUSD, err)
		return
	}
	log.Printf("[AFFILIATE] commission affiliate=%d referred=%d plan=%s rate=%.0f%% usd=%.4f available=%.2f pending=%.2f",
		aff.ID, referred.ID, planID, rate, commissionUSD, aff.AffiliateEarnings.Available, aff.AffiliateEarnings.Pending)
}

// generatePromoCode returns an 8-character hex code.
func generatePromoCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Dashboard returns the affiliate record plus the size of their referral set
// (distinct referred users, which can lag ReferralCount: one user paying
// twice counts once in the set). ErrUserNotFound when not enrolled.
func (s *AffiliateService) Dashboard(userID uint) (*models.User, int64, error) {
	u, err := s.users.GetByID(userID)
	if err != nil || !u.IsAffiliate {
		return nil, 0, ErrUserNotFound
	}
	referred, err := s.users.CountReferrals(userID)
	if err != nil {
		log.Printf("[AFFILIATE] referral count failed affiliate=%d: %v", userID, err)
		referred = 0
	}
	return u, referred, nil
}

// BecomeAffiliate enrolls a user into the affiliate program, assigning a fresh
// promo code and the entry tier. Idempotent for users already enrolled.
func (s *AffiliateService) BecomeAffiliate(userID uint) (*models.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if u.IsAffiliate {
		return u, nil
	}
	for i := 0; i < 10; i++ {
		code, err := generatePromoCode()
		if err != nil {
			return nil, err
		}
		if existing, _ := s.users.GetAffiliateByPromoCode(code); existing != nil {
			continue // collision, roll again
		}
		u.IsAffiliate = true
		u.PromoCode = code
		u.AffiliateTier = domain.AffiliateTierBronze
		u.AffiliateCommission = s.cat.CommissionRate(domain.AffiliateTierBronze)
		u.MinimumPayout = domain.DefaultMinimumPayoutUSD
		if err := s.users.Update(u); err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, fmt.Errorf("failed to generate a unique promo code after retries")
}
