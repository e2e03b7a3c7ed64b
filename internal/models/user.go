package models

import (
	"time"

	"vuka/internal/domain"

	"gorm.io/gorm"
)

// LastPayment is the last transaction applied to the account. Its TransactionID
// doubles as the idempotency marker: a token equal to it is never credited again.
type LastPayment struct {
	PlanID         string     `gorm:"size:64" json:"planId"`
	Amount         int64      `json:"amount"`
	OriginalAmount int64      `json:"originalAmount"`
	Date           *time.Time `json:"date"`
	TransactionID  string     `gorm:"size:255;index" json:"transactionId"`
	Gateway        string     `gorm:"size:20" json:"gateway"`
}

// AffiliateEarnings is the USD commission ledger of an affiliate.
type AffiliateEarnings struct {
	Total     float64 `json:"total"`
	Pending   float64 `json:"pending"`
	Available float64 `json:"available"`
	Paid      float64 `json:"paid"`
}

type AffiliateStats struct {
	TotalReferrals    int        `json:"totalReferrals"`
	ActiveReferrals   int        `json:"activeReferrals"`
	ConversionRate    float64    `json:"conversionRate"`
	AverageCommission float64    `json:"averageCommission"`
	LastPayoutDate    *time.Time `json:"lastPayoutDate"`
	NextPayoutDate    *time.Time `json:"nextPayoutDate"`
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;default:'USER';index" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Account balance and access window
	Credits               int        `gorm:"not null;default:0" json:"credits"`
	Subscription          string     `gorm:"size:20;not null;default:'none'" json:"subscription"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate"`
	IsSubscriptionActive  bool       `gorm:"default:false" json:"isSubscriptionActive"`

	// Gateway correlation markers written at initiation time
	FapshiTransID       string `gorm:"size:255;index" json:"-"`
	LygosPaymentID      string `gorm:"size:255;index" json:"-"`
	CustomTransactionID string `gorm:"size:255;index" json:"-"`

	LastPayment LastPayment `gorm:"embedded;embeddedPrefix:last_payment_" json:"lastPayment"`

	// Promo usage on the buyer side
	UsedPromoCode string `gorm:"size:20" json:"usedPromoCode"`
	PromoPerkUsed bool   `gorm:"default:false" json:"promoPerkUsed"`

	// Affiliate role fields, meaningful only when IsAffiliate is set
	IsAffiliate         bool              `gorm:"default:false;index" json:"isAffiliate"`
	PromoCode           string            `gorm:"index;size:20" json:"promoCode,omitempty"`
	AffiliateTier       string            `gorm:"size:20" json:"affiliateTier,omitempty"`
	AffiliateCommission float64           `json:"affiliateCommission,omitempty"`
	MinimumPayout       float64           `json:"minimumPayout,omitempty"`
	ReferralCount       int               `gorm:"default:0" json:"referralCount,omitempty"`
	AffiliateEarnings   AffiliateEarnings `gorm:"embedded;embeddedPrefix:earnings_" json:"affiliateEarnings"`
	AffiliateStats      AffiliateStats    `gorm:"embedded;embeddedPrefix:stats_" json:"affiliateStats"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }

// SubscriptionActive recomputes the cached flag from the end date. The stored
// IsSubscriptionActive column is a cache, never authoritative.
func (u *User) SubscriptionActive(now time.Time) bool {
	return u.SubscriptionEndDate != nil && now.Before(*u.SubscriptionEndDate)
}

// AffiliateReferral records one referred user in an affiliate's referral set.
// The composite unique index gives the set its at-most-once semantics.
type AffiliateReferral struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AffiliateID    uint      `gorm:"not null;uniqueIndex:idx_affiliate_referred" json:"affiliate_id"`
	ReferredUserID uint      `gorm:"not null;uniqueIndex:idx_affiliate_referred" json:"referred_user_id"`
	CreatedAt      time.Time `json:"created_at"`

	Affiliate    User `gorm:"foreignKey:AffiliateID" json:"-"`
	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"-"`
}

func (AffiliateReferral) TableName() string { return "affiliate_referrals" }
