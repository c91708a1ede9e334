package dto

import (
	"time"

	domainswap "threadly/internal/domain/swap"
)

type Swap struct {
	ID              string    `json:"id"`
	Proposer        string    `json:"proposer_id"`
	Receiver        string    `json:"receiver_id"`
	ProposerListing string    `json:"proposer_listing_id"`
	ReceiverListing string    `json:"receiver_listing_id"`
	Status          string    `json:"status"`
	CounterListing  string    `json:"counter_listing_id,omitempty"`
	Message         string    `json:"message,omitempty"`
	CounterMessage  string    `json:"counter_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func MapSwap(s *domainswap.Swap) Swap {
	if s == nil {
		return Swap{}
	}
	return Swap{
		ID:              s.ID,
		Proposer:        s.Proposer,
		Receiver:        s.Receiver,
		ProposerListing: s.ProposerListing,
		ReceiverListing: s.ReceiverListing,
		Status:          string(s.Status),
		CounterListing:  s.CounterListing,
		Message:         s.Message,
		CounterMessage:  s.CounterMessage,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func MapSwaps(swaps []*domainswap.Swap) []Swap {
	items := make([]Swap, 0, len(swaps))
	for _, s := range swaps {
		items = append(items, MapSwap(s))
	}
	return items
}
