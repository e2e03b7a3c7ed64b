package service

import "vuka/internal/models"

// UserStore is the document-store boundary for user accounts
// (findById/findOne/save semantics). Implemented by repository.UserRepository.
type UserStore interface {
	GetByID(id uint) (*models.User, error)
	GetByCustomTransactionID(token string) (*models.User, error)
	GetByFapshiTransID(transID string) (*models.User, error)
	GetByLygosPaymentID(paymentID string) (*models.User, error)
	GetAffiliateByPromoCode(code string) (*models.User, error)
	Update(u *models.User) error
	AddReferral(affiliateID, referredUserID uint) error
	CountReferrals(affiliateID uint) (int64, error)
}

// AccountStore is the slice of the user store that signup and login need.
type AccountStore interface {
	Create(u *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetAffiliateByPromoCode(code string) (*models.User, error)
	Update(u *models.User) error
}

// PaymentStore persists per-initiation transaction records.
// Implemented by repository.PaymentRepository.
type PaymentStore interface {
	Create(p *models.Payment) error
	GetByTransactionID(token string) (*models.Payment, error)
	GetByGatewayRef(ref string) (*models.Payment, error)
	ListByUserID(userID uint, limit int) ([]models.Payment, error)
	Update(p *models.Payment) error
}
