package services

import (
	"errors"

	"paperback/internal/domain"
	"paperback/internal/repos"

	"github.com/google/uuid"
)

var ErrNotPayable = errors.New("order is not awaiting payment")

// SnapGateway creates a hosted-checkout session with the payment provider
// and returns its short-lived session token.
type SnapGateway interface {
	CreateSnapToken(txnID string, amount float64, u *domain.User) (token, redirectURL string, err error)
}

type PaymentService struct {
	Orders  *repos.OrderRepo
	Txns    *repos.TransactionRepo
	Users   *repos.UserRepo
	Gateway SnapGateway
}

func NewPaymentService(orders *repos.OrderRepo, txns *repos.TransactionRepo, users *repos.UserRepo, gw SnapGateway) *PaymentService {
	return &PaymentService{Orders: orders, Txns: txns, Users: users, Gateway: gw}
}

type PaymentSession struct {
	Transaction domain.Transaction `json:"transaction"`
	SnapToken   string             `json:"snap_token"`
	RedirectURL string             `json:"redirect_url,omitempty"`
}

// CreateSession opens a provider checkout session for a pending order owned
// by userID and records the attempt as a transaction.
func (s *PaymentService) CreateSession(userID, orderID string) (PaymentSession, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return PaymentSession{}, err
	}
	if o.UserID != userID {
		return PaymentSession{}, repos.ErrNotFound
	}
	if o.Status != domain.OrderPending {
		return PaymentSession{}, ErrNotPayable
	}
	u, err := s.Users.ByID(userID)
	if err != nil {
		return PaymentSession{}, err
	}

	// Reuse an open session instead of minting a new token per click.
	if prev, err := s.Txns.LatestByOrder(orderID); err == nil &&
		prev.Status == domain.TxnPending && prev.SnapToken != "" {
		return PaymentSession{Transaction: prev, SnapToken: prev.SnapToken}, nil
	}

	txnID := uuid.NewString()
	token, redirect, err := s.Gateway.CreateSnapToken(txnID, o.Total, u)
	if err != nil {
		return PaymentSession{}, err
	}

	t := domain.Transaction{
		ID:        txnID,
		OrderID:   o.ID,
		UserID:    userID,
		Amount:    o.Total,
		SnapToken: token,
		Status:    domain.TxnPending,
	}
	if err := s.Txns.Create(&t); err != nil {
		return PaymentSession{}, err
	}
	return PaymentSession{Transaction: t, SnapToken: token, RedirectURL: redirect}, nil
}

// HandleNotification applies a provider callback. Settlement marks the order
// paid; terminal failures mark the transaction failed and leave the order
// pending so the user can retry.
func (s *PaymentService) HandleNotification(orderID, providerStatus string) error {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	switch providerStatus {
	case "settlement", "capture":
		if err := s.Txns.UpdateStatusByOrder(orderID, domain.TxnSettled); err != nil {
			return err
		}
		if o.Status == domain.OrderPending {
			return s.Orders.UpdateStatus(orderID, domain.OrderPaid, o.TrackingNumber)
		}
		return nil
	case "deny", "cancel", "expire", "failure":
		return s.Txns.UpdateStatusByOrder(orderID, domain.TxnFailed)
	default:
		// pending / challenge style statuses: nothing to apply yet.
		return nil
	}
}

func (s *PaymentService) List(limit int) ([]domain.Transaction, error) {
	return s.Txns.List(limit)
}
