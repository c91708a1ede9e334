package events

import "time"

// DomainEvent is something that happened to an aggregate and is worth telling
// other systems about via the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the identity fields; concrete events embed it alongside
// their payload fields.
type BaseEvent struct {
	Name      string    `json:"-"`
	Aggregate string    `json:"-"`
	Time      time.Time `json:"-"`
}

func (e BaseEvent) EventName() string     { return e.Name }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.Time }

// OrderEvent is emitted on every order state transition.
type OrderEvent struct {
	BaseEvent
	OrderID   string  `json:"orderId"`
	Buyer     string  `json:"buyer"`
	Seller    string  `json:"seller"`
	ListingID string  `json:"listingId"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

func NewOrderEvent(name, orderID, buyer, seller, listingID string, amount float64, status string, at time.Time) OrderEvent {
	return OrderEvent{
		BaseEvent: BaseEvent{Name: name, Aggregate: orderID, Time: at},
		OrderID:   orderID,
		Buyer:     buyer,
		Seller:    seller,
		ListingID: listingID,
		Amount:    amount,
		Status:    status,
	}
}

// SwapEvent is emitted on every swap negotiation transition.
type SwapEvent struct {
	BaseEvent
	SwapID   string `json:"swapId"`
	Proposer string `json:"proposer"`
	Receiver string `json:"receiver"`
	Status   string `json:"status"`
}

func NewSwapEvent(name, swapID, proposer, receiver, status string, at time.Time) SwapEvent {
	return SwapEvent{
		BaseEvent: BaseEvent{Name: name, Aggregate: swapID, Time: at},
		SwapID:    swapID,
		Proposer:  proposer,
		Receiver:  receiver,
		Status:    status,
	}
}

// ListingEvent is emitted when a listing is published, sold or expired.
type ListingEvent struct {
	BaseEvent
	ListingID string `json:"listingId"`
	Seller    string `json:"seller"`
	Status    string `json:"status"`
}

func NewListingEvent(name, listingID, seller, status string, at time.Time) ListingEvent {
	return ListingEvent{
		BaseEvent: BaseEvent{Name: name, Aggregate: listingID, Time: at},
		ListingID: listingID,
		Seller:    seller,
		Status:    status,
	}
}
