package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "threadly/internal/app/outbox"
	"threadly/internal/app/policies"
	domainlisting "threadly/internal/domain/listing"
	domainnotification "threadly/internal/domain/notification"
	domainorder "threadly/internal/domain/order"
	"threadly/internal/domain/shared/events"
)

var (
	ErrNotInvolved        = errors.New("order: not a party to this order")
	ErrListingUnavailable = errors.New("order: listing is no longer available")
)

type Service struct {
	Orders        domainorder.Repository
	Listings      domainlisting.Repository
	Notifications domainnotification.Repository
	Payments      policies.PaymentsPort
	Outbox        appoutbox.Outbox
	Logger        *slog.Logger
}

type CreateParams struct {
	Buyer    string
	Listing  domainlisting.ID
	Shipping domainorder.ShippingAddress
}

type CreateResult struct {
	Order        *domainorder.Order
	ClientSecret string
}

// Create opens a pending order against an active listing and places the
// payment hold. The listing stays active until payment is confirmed; two
// buyers can hold intents at once and the first confirmation wins.
func (s *Service) Create(ctx context.Context, params CreateParams) (*CreateResult, error) {
	l, err := s.Listings.ByID(ctx, params.Listing)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, domainlisting.ErrNotActive
	}
	if l.Seller == params.Buyer {
		return nil, domainorder.ErrBuyerIsSeller
	}

	orderID := uuid.NewString()
	intent, err := s.Payments.CreateIntent(ctx, orderID, l.Price, "INR")
	if err != nil {
		return nil, err
	}

	o, err := domainorder.New(orderID, params.Buyer, l.Seller, string(l.ID), l.Price, intent.ID, params.Shipping, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, "order.created", o)
	if s.Logger != nil {
		s.Logger.Info("order created", "order_id", o.ID, "listing_id", o.ListingID, "amount", o.Amount)
	}
	return &CreateResult{Order: o, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment captures the hold, confirms the order and takes the listing
// off the market. Losing buyers of the same listing keep pending orders that
// can no longer be confirmed.
func (s *Service) ConfirmPayment(ctx context.Context, callerID, orderID string) (*domainorder.Order, error) {
	o, err := s.Orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Buyer != callerID {
		return nil, domainorder.ErrNotBuyer
	}

	l, err := s.Listings.ByID(ctx, domainlisting.ID(o.ListingID))
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, ErrListingUnavailable
	}

	paymentID, err := s.Payments.Capture(ctx, o.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := o.ConfirmPayment(paymentID, now); err != nil {
		return nil, err
	}
	if err := l.MarkSold(now); err != nil {
		return nil, err
	}
	if err := s.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, l); err != nil {
		return nil, err
	}

	s.notify(ctx, o.Seller, domainnotification.TypeNewOrder,
		fmt.Sprintf("%q has been purchased", l.Title), "/orders/"+o.ID)
	s.recordEvent(ctx, "order.confirmed", o)
	if s.Logger != nil {
		s.Logger.Info("order confirmed", "order_id", o.ID)
	}
	return o, nil
}

// MarkShipped is the seller's handoff to the courier.
func (s *Service) MarkShipped(ctx context.Context, callerID, orderID, note string) (*domainorder.Order, error) {
	o, err := s.Orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.MarkShipped(callerID, time.Now()); err != nil {
		return nil, err
	}
	o.DeliveryNote = note
	if err := s.Orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.notify(ctx, o.Buyer, domainnotification.TypeOrderShipped, "Your order is on its way", "/orders/"+o.ID)
	s.recordEvent(ctx, "order.shipped", o)
	return o, nil
}

// ConfirmDelivery completes the order and releases escrow to the seller.
func (s *Service) ConfirmDelivery(ctx context.Context, callerID, orderID string) (*domainorder.Order, error) {
	o, err := s.Orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.ConfirmDelivery(callerID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Payments.Release(ctx, o.PaymentIntentID); err != nil {
		return nil, err
	}
	if err := s.Orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.notify(ctx, o.Seller, domainnotification.TypeOrderDelivered, "Delivery confirmed, payment released", "/orders/"+o.ID)
	s.recordEvent(ctx, "order.completed", o)
	if s.Logger != nil {
		s.Logger.Info("order completed", "order_id", o.ID, "escrow_released", o.EscrowReleased)
	}
	return o, nil
}

// Cancel aborts an unshipped order and refunds any captured payment. The
// listing goes back on the market if this order was the one that sold it.
func (s *Service) Cancel(ctx context.Context, callerID, orderID string) (*domainorder.Order, error) {
	o, err := s.Orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	wasPaid := o.PaymentStatus == domainorder.PaymentPaid
	if err := o.Cancel(callerID, time.Now()); err != nil {
		return nil, err
	}
	if wasPaid {
		if err := s.Payments.Refund(ctx, o.PaymentIntentID); err != nil {
			return nil, err
		}
		if err := s.Listings.UpdateStatus(ctx, domainlisting.ID(o.ListingID), domainlisting.StatusActive); err != nil && s.Logger != nil {
			s.Logger.Warn("listing not relisted after cancel", "listing_id", o.ListingID, "error", err)
		}
	}
	if err := s.Orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, "order.cancelled", o)
	return o, nil
}

func (s *Service) Get(ctx context.Context, callerID, orderID string) (*domainorder.Order, error) {
	o, err := s.Orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Involves(callerID) {
		return nil, ErrNotInvolved
	}
	return o, nil
}

func (s *Service) MyOrders(ctx context.Context, callerID string) ([]*domainorder.Order, error) {
	return s.Orders.ByParticipant(ctx, callerID)
}

func (s *Service) notify(ctx context.Context, recipient string, kind domainnotification.Type, message, link string) {
	if s.Notifications == nil {
		return
	}
	n := &domainnotification.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Type:      kind,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Notifications.Create(ctx, n); err != nil && s.Logger != nil {
		s.Logger.Warn("notification not stored", "recipient", recipient, "error", err)
	}
}

func (s *Service) recordEvent(ctx context.Context, name string, o *domainorder.Order) {
	err := appoutbox.Record(ctx, s.Outbox,
		events.NewOrderEvent(name, o.ID, o.Buyer, o.Seller, o.ListingID, o.Amount, string(o.Status), time.Now()))
	if err != nil && s.Logger != nil {
		s.Logger.Warn("order event not recorded", "order_id", o.ID, "error", err)
	}
}
