package dto

import (
	"time"

	domainorder "threadly/internal/domain/order"
)

type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type Order struct {
	ID             string          `json:"id"`
	Buyer          string          `json:"buyer_id"`
	Seller         string          `json:"seller_id"`
	ListingID      string          `json:"listing_id"`
	Amount         float64         `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentStatus  string          `json:"payment_status"`
	Status         string          `json:"status"`
	EscrowReleased bool            `json:"escrow_released"`
	Shipping       ShippingAddress `json:"shipping"`
	DeliveryNote   string          `json:"delivery_note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CheckoutResponse pairs a freshly created order with the provider client
// secret the frontend needs to complete the payment.
type CheckoutResponse struct {
	Order        Order  `json:"order"`
	ClientSecret string `json:"client_secret"`
}

func MapOrder(o *domainorder.Order) Order {
	if o == nil {
		return Order{}
	}
	return Order{
		ID:             o.ID,
		Buyer:          o.Buyer,
		Seller:         o.Seller,
		ListingID:      o.ListingID,
		Amount:         o.Amount,
		Currency:       o.Currency,
		PaymentStatus:  string(o.PaymentStatus),
		Status:         string(o.Status),
		EscrowReleased: o.EscrowReleased,
		Shipping: ShippingAddress{
			Name:    o.Shipping.Name,
			Phone:   o.Shipping.Phone,
			Street:  o.Shipping.Street,
			City:    o.Shipping.City,
			State:   o.Shipping.State,
			Pincode: o.Shipping.Pincode,
		},
		DeliveryNote: o.DeliveryNote,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func MapOrders(orders []*domainorder.Order) []Order {
	items := make([]Order, 0, len(orders))
	for _, o := range orders {
		items = append(items, MapOrder(o))
	}
	return items
}
