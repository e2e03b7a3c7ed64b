package repository

import (
	"vuka/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByCustomTransactionID finds the user carrying a pending marker for the
// given composite transaction token.
func (r *UserRepository) GetByCustomTransactionID(token string) (*models.User, error) {
	var u models.User
	err := r.db.Where("custom_transaction_id = ?", token).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByFapshiTransID(transID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("fapshi_trans_id = ?", transID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByLygosPaymentID(paymentID string) (*models.User, error) {
	var u models.User
	err := r.db.Where("lygos_payment_id = ?", paymentID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAffiliateByPromoCode returns the affiliate owning a promo code. A user
// merely holding the code without the affiliate flag does not match.
func (r *UserRepository) GetAffiliateByPromoCode(code string) (*models.User, error) {
	var u models.User
	err := r.db.Where("promo_code = ? AND is_affiliate = ?", code, true).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// AddReferral inserts into the affiliate's referral set; the composite unique
// index makes re-insertions no-ops.
func (r *UserRepository) AddReferral(affiliateID, referredUserID uint) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.AffiliateReferral{
		AffiliateID:    affiliateID,
		ReferredUserID: referredUserID,
	}).Error
}

func (r *UserRepository) CountReferrals(affiliateID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.AffiliateReferral{}).Where("affiliate_id = ?", affiliateID).Count(&n).Error
	return n, err
}
