package service

import (
	"context"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"vuka/internal/catalog"
	"vuka/internal/domain"
	"vuka/internal/models"
	"vuka/pkg/gateway"
	"vuka/pkg/txid"

	"github.com/google/uuid"
)

const promoDiscountPercent = 10

// PaymentService owns the purchase lifecycle: initiation against a gateway,
// and reconciliation of gateway signals into exactly-once account crediting.
type PaymentService struct {
	users      UserStore
	payments   PaymentStore
	cat        *catalog.Catalog
	gateways   map[string]gateway.Gateway
	affiliates *AffiliateService
}

func NewPaymentService(users UserStore, payments PaymentStore, cat *catalog.Catalog, gateways map[string]gateway.Gateway, affiliates *AffiliateService) *PaymentService {
	return &PaymentService{users: users, payments: payments, cat: cat, gateways: gateways, affiliates: affiliates}
}

// applyAmountFloor raises amount to the smallest value satisfying a
// strictly-greater-than gateway minimum. minExclusive of 0 means no floor.
func applyAmountFloor(amount, minExclusive int64) int64 {
	if minExclusive > 0 && amount <= minExclusive {
		return minExclusive + 1
	}
	return amount
}

type CreatePaymentInput struct {
	UserID      string
	PlanID      string
	CountryCode string
}

type CreatePaymentResult struct {
	TransactionID    string
	PaymentURL       string
	Gateway          string
	Amount           int64
	OriginalAmount   int64
	Plan             catalog.Plan
	HasPromoDiscount bool
}

// CreatePayment validates a purchase request, resolves the gateway for the
// buyer's country, prices the plan and opens a pending transaction with the
// gateway. No crediting happens here; that is deferred to reconciliation.
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*CreatePaymentResult, error) {
	if in.UserID == "" || in.PlanID == "" || in.CountryCode == "" {
		return nil, ErrMissingField
	}
	userID, err := strconv.ParseUint(in.UserID, 10, 32)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(uint(userID))
	if err != nil {
		return nil, ErrUserNotFound
	}
	plan, ok := s.cat.ResolvePlan(in.PlanID)
	if !ok {
		return nil, ErrInvalidPlan
	}
	gwName := s.cat.ResolveGateway(in.CountryCode)
	gw, ok := s.gateways[gwName]
	if !ok {
		return nil, ErrUnknownGateway
	}

	hasPromoDiscount := user.UsedPromoCode != "" && !user.PromoPerkUsed
	finalAmount := plan.AmountXAF
	if hasPromoDiscount {
		finalAmount = int64(math.Round(float64(plan.AmountXAF) * (100 - promoDiscountPercent) / 100))
	}
	if floored := applyAmountFloor(finalAmount, s.cat.MinAmountExclusive(gwName)); floored != finalAmount {
		log.Printf("[PAYMENT] amount %d below %s floor, raising to %d (user=%d plan=%s)", finalAmount, gwName, floored, user.ID, plan.ID)
		finalAmount = floored
	}

	token := txid.Encode(gwName, in.UserID, plan.ID, time.Now().Unix())
	resp, err := gw.Initiate(ctx, gateway.InitiateRequest{
		AmountXAF:   finalAmount,
		Email:       user.Email,
		UserRef:     in.UserID,
		ExternalID:  token,
		Description: plan.Name,
	})
	if err != nil {
		return nil, err
	}

	user.CustomTransactionID = token
	switch gwName {
	case domain.GatewayFapshi:
		user.FapshiTransID = resp.TransactionID
	case domain.GatewayLygos:
		user.LygosPaymentID = resp.TransactionID
	}
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	if err := s.payments.Create(&models.Payment{
		UserID:         user.ID,
		PlanID:         plan.ID,
		AmountXAF:      finalAmount,
		OriginalXAF:    plan.AmountXAF,
		Currency:       "XAF",
		Gateway:        gwName,
		TransactionID:  token,
		GatewayRef:     resp.TransactionID,
		Status:         domain.PaymentStatusPending,
		IdempotencyKey: uuid.New().String(),
	}); err != nil {
		log.Printf("[PAYMENT] failed to record pending payment token=%s: %v", token, err)
	}
	log.Printf("[PAYMENT] initiated gateway=%s user=%d plan=%s amount=%d token=%s", gwName, user.ID, plan.ID, finalAmount, token)
	return &CreatePaymentResult{
		TransactionID:    token,
		PaymentURL:       resp.PaymentURL,
		Gateway:          gwName,
		Amount:           finalAmount,
		OriginalAmount:   plan.AmountXAF,
		Plan:             plan,
		HasPromoDiscount: hasPromoDiscount,
	}, nil
}

// ApplyPayment credits one transaction to a user account, at most once per
// transaction id. When the id matches the last applied payment the user is
// returned unchanged with applied=false.
//
// The guard is a read-then-write: two concurrent deliveries of the same id can
// both pass it before either saves. Gateways redeliver sequentially in
// practice; strict exactly-once needs a conditional update at the storage
// layer.
func (s *PaymentService) ApplyPayment(user *models.User, planID, transactionID, gatewayName string) (*models.User, bool, error) {
	if user.LastPayment.TransactionID != "" && user.LastPayment.TransactionID == transactionID {
		log.Printf("[RECONCILE] token=%s already applied to user=%d, skipping", transactionID, user.ID)
		return user, false, nil
	}
	plan, ok := s.cat.ResolvePlan(planID)
	if !ok {
		return nil, false, ErrInvalidPlan
	}

	now := time.Now()
	end := now.AddDate(0, 0, plan.DurationDays)
	// Both plan types grant a fresh access window; it overwrites, never extends.
	user.Subscription = plan.SubscriptionID
	user.SubscriptionStartDate = &now
	user.SubscriptionEndDate = &end
	user.IsSubscriptionActive = true
	if plan.Type == domain.PlanTypeCoins {
		user.Credits += plan.Coins
	}
	if user.UsedPromoCode != "" && !user.PromoPerkUsed {
		user.PromoPerkUsed = true
	}
	originalAmount := plan.OriginalXAF
	if originalAmount == 0 {
		originalAmount = plan.AmountXAF
	}
	user.LastPayment = models.LastPayment{
		PlanID:         plan.ID,
		Amount:         plan.AmountXAF,
		OriginalAmount: originalAmount,
		Date:           &now,
		TransactionID:  transactionID,
		Gateway:        gatewayName,
	}
	if err := s.users.Update(user); err != nil {
		return nil, false, err
	}
	log.Printf("[RECONCILE] applied token=%s user=%d plan=%s credits=%d sub=%s until=%s",
		transactionID, user.ID, plan.ID, user.Credits, user.Subscription, end.Format(time.RFC3339))

	s.markPaymentCompleted(transactionID)

	// Crediting is committed; commission is best-effort on top of it.
	if user.UsedPromoCode != "" && s.affiliates != nil {
		s.affiliates.ProcessCommission(user, plan.AmountXAF, plan.ID)
	}
	return user, true, nil
}

func (s *PaymentService) markPaymentCompleted(transactionID string) {
	p, err := s.payments.GetByTransactionID(transactionID)
	if err != nil || p == nil || p.Status == domain.PaymentStatusCompleted {
		return
	}
	now := time.Now()
	p.Status = domain.PaymentStatusCompleted
	p.CompletedAt = &now
	if err := s.payments.Update(p); err != nil {
		log.Printf("[RECONCILE] failed to mark payment %d completed: %v", p.ID, err)
	}
}

// ReconcileResult is what a webhook or manual verification produced.
type ReconcileResult struct {
	User    *models.User
	PlanID  string
	Outcome gateway.Outcome
	Applied bool
}

// ReconcileFapshi handles a Fapshi-style callback: externalID carries our
// composite token, transID the gateway's own id, status whatever shape the
// gateway sent. Only a success outcome credits; anything else is acknowledged
// without mutation.
func (s *PaymentService) ReconcileFapshi(externalID, transID string, status any) (*ReconcileResult, error) {
	user, planID, token, err := s.resolveFapshiUser(externalID, transID)
	if err != nil {
		return nil, err
	}
	outcome := gateway.FapshiOutcome(status)
	if outcome != gateway.OutcomeSuccess {
		log.Printf("[RECONCILE] fapshi callback user=%d outcome=%s status=%v, no crediting", user.ID, outcome, status)
		return &ReconcileResult{User: user, PlanID: planID, Outcome: outcome}, nil
	}
	user, applied, err := s.ApplyPayment(user, planID, token, domain.GatewayFapshi)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{User: user, PlanID: planID, Outcome: outcome, Applied: applied}, nil
}

// resolveFapshiUser finds the account a callback belongs to. Resolution order:
// the user reference parsed out of the token, then the stored pending token,
// then the stored gateway id. The returned token is the id crediting must be
// keyed on: when the callback did not carry our composite token, the user's
// stored pending token stands in, so redeliveries hit the idempotency marker
// no matter which identifier they arrive with.
func (s *PaymentService) resolveFapshiUser(externalID, transID string) (*models.User, string, string, error) {
	var planID string
	ref, decodeErr := txid.Decode(externalID)
	if decodeErr == nil {
		planID = ref.PlanRef
		if id, err := strconv.ParseUint(ref.UserRef, 10, 32); err == nil {
			if u, err := s.users.GetByID(uint(id)); err == nil {
				return u, planID, externalID, nil
			}
		}
	}
	if externalID != "" {
		if u, err := s.users.GetByCustomTransactionID(externalID); err == nil {
			return u, s.planFromPendingToken(u, planID), externalID, nil
		}
	}
	if transID != "" {
		if u, err := s.users.GetByFapshiTransID(transID); err == nil {
			token := u.CustomTransactionID
			if token == "" {
				token = externalID
			}
			return u, s.planFromPendingToken(u, planID), token, nil
		}
	}
	if decodeErr != nil {
		return nil, "", "", ErrMalformedTransactionID
	}
	return nil, "", "", ErrUserNotFound
}

// planFromPendingToken recovers the plan reference from the user's stored
// pending token when the callback's own identifier did not decode.
func (s *PaymentService) planFromPendingToken(u *models.User, planID string) string {
	if planID != "" {
		return planID
	}
	if ref, err := txid.Decode(u.CustomTransactionID); err == nil {
		return ref.PlanRef
	}
	return ""
}

// ReconcileLygos handles a Lygos-style callback keyed on order id. Tokens with
// only three segments (no timestamp) are tolerated; four or more follow the
// shared codec.
func (s *PaymentService) ReconcileLygos(orderID, paymentID, status string) (*ReconcileResult, error) {
	user, planID, token, err := s.resolveLygosUser(orderID, paymentID)
	if err != nil {
		return nil, err
	}
	outcome := gateway.LygosOutcome(status)
	if outcome != gateway.OutcomeSuccess {
		log.Printf("[RECONCILE] lygos callback user=%d outcome=%s status=%q, no crediting", user.ID, outcome, status)
		return &ReconcileResult{User: user, PlanID: planID, Outcome: outcome}, nil
	}
	user, applied, err := s.ApplyPayment(user, planID, token, domain.GatewayLygos)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{User: user, PlanID: planID, Outcome: outcome, Applied: applied}, nil
}

// resolveLygosUser mirrors resolveFapshiUser: the returned token is the
// crediting key, falling back to the user's stored pending token when the
// order id is not one of ours.
func (s *PaymentService) resolveLygosUser(orderID, paymentID string) (*models.User, string, string, error) {
	var planID string
	malformed := true
	if ref, err := txid.Decode(orderID); err == nil {
		malformed = false
		planID = ref.PlanRef
		if id, err := strconv.ParseUint(ref.UserRef, 10, 32); err == nil {
			if u, err := s.users.GetByID(uint(id)); err == nil {
				return u, planID, orderID, nil
			}
		}
	} else if parts := strings.Split(orderID, txid.Delimiter); len(parts) == 3 {
		// Legacy short form: gateway_userRef_planRef without a timestamp.
		malformed = false
		planID = parts[2]
		if id, err := strconv.ParseUint(parts[1], 10, 32); err == nil {
			if u, err := s.users.GetByID(uint(id)); err == nil {
				return u, planID, orderID, nil
			}
		}
	}
	if orderID != "" {
		if u, err := s.users.GetByCustomTransactionID(orderID); err == nil {
			return u, s.planFromPendingToken(u, planID), orderID, nil
		}
	}
	if paymentID != "" {
		if u, err := s.users.GetByLygosPaymentID(paymentID); err == nil {
			token := u.CustomTransactionID
			if token == "" {
				token = orderID
			}
			return u, s.planFromPendingToken(u, planID), token, nil
		}
	}
	if malformed {
		return nil, "", "", ErrMalformedTransactionID
	}
	return nil, "", "", ErrUserNotFound
}

// VerifyResult is what manual verification reports. When the remote status
// query fails, Remote is false and the locally stored snapshot is returned
// instead of an error.
type VerifyResult struct {
	User    *models.User
	PlanID  string
	Status  string
	Outcome gateway.Outcome
	Applied bool
	Remote  bool
}

// VerifyByTransactionID re-checks a transaction against its gateway's status
// endpoint and credits the account when the gateway reports success.
func (s *PaymentService) VerifyByTransactionID(ctx context.Context, token string) (*VerifyResult, error) {
	ref, err := txid.Decode(token)
	if err != nil {
		return nil, ErrMalformedTransactionID
	}
	gw, ok := s.gateways[ref.Gateway]
	if !ok {
		return nil, ErrUnknownGateway
	}
	user, _, err := s.resolveUserByToken(token, ref)
	if err != nil {
		return nil, err
	}

	queryRef := token
	if ref.Gateway == domain.GatewayFapshi {
		queryRef = user.FapshiTransID
	}
	status, err := gw.QueryStatus(ctx, queryRef)
	if err != nil {
		// Remote unreachable: report what we already know locally.
		log.Printf("[VERIFY] remote status query failed token=%s: %v, returning local snapshot", token, err)
		return &VerifyResult{User: user, PlanID: ref.PlanRef, Outcome: gateway.OutcomeUnknown, Remote: false}, nil
	}
	return s.settleVerification(user, ref.PlanRef, token, ref.Gateway, status)
}

// VerifyFapshiByTransID re-processes by the gateway-side transaction id, for
// callbacks that never arrived.
func (s *PaymentService) VerifyFapshiByTransID(ctx context.Context, transID string) (*VerifyResult, error) {
	if transID == "" {
		return nil, ErrMissingField
	}
	user, err := s.users.GetByFapshiTransID(transID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	token := user.CustomTransactionID
	planID := s.planFromPendingToken(user, "")
	if planID == "" || token == "" {
		// Marker already overwritten on the user; the transaction record
		// still knows the plan and the crediting key.
		if p, err := s.payments.GetByGatewayRef(transID); err == nil {
			if planID == "" {
				planID = p.PlanID
			}
			if token == "" {
				token = p.TransactionID
			}
		}
	}
	gw, ok := s.gateways[domain.GatewayFapshi]
	if !ok {
		return nil, ErrUnknownGateway
	}
	status, err := gw.QueryStatus(ctx, transID)
	if err != nil {
		log.Printf("[VERIFY] fapshi status query failed transId=%s: %v, returning local snapshot", transID, err)
		return &VerifyResult{User: user, PlanID: planID, Outcome: gateway.OutcomeUnknown, Remote: false}, nil
	}
	return s.settleVerification(user, planID, token, domain.GatewayFapshi, status)
}

func (s *PaymentService) settleVerification(user *models.User, planID, token, gatewayName, status string) (*VerifyResult, error) {
	var outcome gateway.Outcome
	if gatewayName == domain.GatewayLygos {
		outcome = gateway.LygosOutcome(status)
	} else {
		outcome = gateway.FapshiOutcome(status)
	}
	res := &VerifyResult{User: user, PlanID: planID, Status: status, Outcome: outcome, Remote: true}
	if outcome != gateway.OutcomeSuccess {
		return res, nil
	}
	user, applied, err := s.ApplyPayment(user, planID, token, gatewayName)
	if err != nil {
		return nil, err
	}
	res.User = user
	res.Applied = applied
	return res, nil
}

func (s *PaymentService) resolveUserByToken(token string, ref txid.Ref) (*models.User, string, error) {
	if id, err := strconv.ParseUint(ref.UserRef, 10, 32); err == nil {
		if u, err := s.users.GetByID(uint(id)); err == nil {
			return u, ref.PlanRef, nil
		}
	}
	if u, err := s.users.GetByCustomTransactionID(token); err == nil {
		return u, ref.PlanRef, nil
	}
	return nil, "", ErrUserNotFound
}

// StatusByTransactionID classifies the current account state behind a token:
// active subscription, coin balance only, or nothing.
func (s *PaymentService) StatusByTransactionID(token string) (*models.User, string, error) {
	ref, err := txid.Decode(token)
	var user *models.User
	if err == nil {
		user, _, err = s.resolveUserByToken(token, ref)
	} else {
		user, err = s.users.GetByCustomTransactionID(token)
	}
	if err != nil || user == nil {
		return nil, "", ErrUserNotFound
	}

	// Recompute the active flag; the stored column is only a cache.
	user.IsSubscriptionActive = user.SubscriptionActive(time.Now())
	switch {
	case user.IsSubscriptionActive && user.Subscription != domain.SubscriptionNone && user.Subscription != "":
		return user, "active", nil
	case user.Credits > 0:
		return user, "coins", nil
	default:
		return user, "inactive", nil
	}
}

// History returns the stored payment snapshot for one user: last applied
// payment, balances and recent transaction records.
func (s *PaymentService) History(userID uint, limit int) (*models.User, []models.Payment, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}
	if limit <= 0 {
		limit = 20
	}
	list, err := s.payments.ListByUserID(userID, limit)
	if err != nil {
		log.Printf("[PAYMENT] history list failed user=%d: %v", userID, err)
		list = nil
	}
	return user, list, nil
}
