package service

import (
	"context"
	"fmt"
	"strings"

	"vuka/internal/models"
	"vuka/pkg/gateway"

	"gorm.io/gorm"
)

var errNotFound = gorm.ErrRecordNotFound

type fakeUserStore struct {
	users     map[uint]*models.User
	referrals map[string]bool // "affiliateID:referredID"
	updateErr error
	updates   int
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[uint]*models.User{}, referrals: map[string]bool{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(u *models.User) error {
	if u.ID == 0 {
		u.ID = uint(len(s.users) + 1)
	}
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) GetByID(id uint) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeUserStore) GetByCustomTransactionID(token string) (*models.User, error) {
	for _, u := range s.users {
		if token != "" && u.CustomTransactionID == token {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeUserStore) GetByFapshiTransID(transID string) (*models.User, error) {
	for _, u := range s.users {
		if transID != "" && u.FapshiTransID == transID {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeUserStore) GetByLygosPaymentID(paymentID string) (*models.User, error) {
	for _, u := range s.users {
		if paymentID != "" && u.LygosPaymentID == paymentID {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeUserStore) GetAffiliateByPromoCode(code string) (*models.User, error) {
	for _, u := range s.users {
		if u.IsAffiliate && u.PromoCode == code {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeUserStore) Update(u *models.User) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates++
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) AddReferral(affiliateID, referredUserID uint) error {
	s.referrals[fmt.Sprintf("%d:%d", affiliateID, referredUserID)] = true
	return nil
}

func (s *fakeUserStore) CountReferrals(affiliateID uint) (int64, error) {
	var n int64
	prefix := fmt.Sprintf("%d:", affiliateID)
	for k := range s.referrals {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}

type fakePaymentStore struct {
	payments map[string]*models.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[string]*models.Payment{}}
}

func (s *fakePaymentStore) Create(p *models.Payment) error {
	if p.ID == 0 {
		p.ID = uint(len(s.payments) + 1)
	}
	s.payments[p.TransactionID] = p
	return nil
}

func (s *fakePaymentStore) GetByTransactionID(token string) (*models.Payment, error) {
	if p, ok := s.payments[token]; ok {
		return p, nil
	}
	return nil, errNotFound
}

func (s *fakePaymentStore) GetByGatewayRef(ref string) (*models.Payment, error) {
	for _, p := range s.payments {
		if ref != "" && p.GatewayRef == ref {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (s *fakePaymentStore) ListByUserID(userID uint, limit int) ([]models.Payment, error) {
	var list []models.Payment
	for _, p := range s.payments {
		if p.UserID == userID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (s *fakePaymentStore) Update(p *models.Payment) error {
	s.payments[p.TransactionID] = p
	return nil
}

type fakeGateway struct {
	name        string
	paymentURL  string
	transID     string
	initiateErr error
	status      string
	statusErr   error
	lastReq     gateway.InitiateRequest
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Initiate(_ context.Context, req gateway.InitiateRequest) (*gateway.InitiateResponse, error) {
	g.lastReq = req
	if g.initiateErr != nil {
		return nil, g.initiateErr
	}
	return &gateway.InitiateResponse{PaymentURL: g.paymentURL, TransactionID: g.transID}, nil
}

func (g *fakeGateway) QueryStatus(_ context.Context, ref string) (string, error) {
	if g.statusErr != nil {
		return "", g.statusErr
	}
	return g.status, nil
}
