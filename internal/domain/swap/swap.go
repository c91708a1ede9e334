package swap

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("swap: not found")
	ErrSelfSwap         = errors.New("swap: cannot swap with yourself")
	ErrNotProposer      = errors.New("swap: only the proposer may perform this action")
	ErrNotReceiver      = errors.New("swap: only the receiver may respond")
	ErrNotInvolved      = errors.New("swap: not a party to this swap")
	ErrInvalidState     = errors.New("swap: invalid state for this transition")
	ErrCounterRequired  = errors.New("swap: a counter listing is required")
	ErrDuplicateSwap    = errors.New("swap: an open swap already exists for these listings")
	ErrMessageTooLong   = errors.New("swap: message exceeds 300 characters")
	ErrListingsRequired = errors.New("swap: both listings are required")
)

type Status string

const (
	StatusProposed  Status = "proposed"
	StatusCountered Status = "countered"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Swap is an item-for-item trade negotiation between two sellers.
type Swap struct {
	ID              string
	Proposer        string
	Receiver        string
	ProposerListing string
	ReceiverListing string
	Status          Status
	CounterListing  string
	Message         string
	CounterMessage  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Stats is a platform-wide swap rollup.
type Stats struct {
	Total     int64
	Completed int64
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Swap, error)
	ByParticipant(ctx context.Context, userID string) ([]*Swap, error)
	Stats(ctx context.Context) (Stats, error)
	// FindOpen returns a swap between the two listings still in
	// proposed or countered state, or ErrNotFound.
	FindOpen(ctx context.Context, proposerListing, receiverListing string) (*Swap, error)
	Save(ctx context.Context, s *Swap) error
}

func New(id, proposer, receiver, proposerListing, receiverListing, message string, now time.Time) (*Swap, error) {
	if proposer == receiver {
		return nil, ErrSelfSwap
	}
	if proposerListing == "" || receiverListing == "" {
		return nil, ErrListingsRequired
	}
	if len(message) > 300 {
		return nil, ErrMessageTooLong
	}
	now = now.UTC()
	return &Swap{
		ID:              id,
		Proposer:        proposer,
		Receiver:        receiver,
		ProposerListing: proposerListing,
		ReceiverListing: receiverListing,
		Status:          StatusProposed,
		Message:         message,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Open reports whether the swap can still be responded to or cancelled.
func (s *Swap) Open() bool {
	return s.Status == StatusProposed || s.Status == StatusCountered
}

// Accept is receiver-only and closes the negotiation.
func (s *Swap) Accept(actor string, now time.Time) error {
	if actor != s.Receiver {
		return ErrNotReceiver
	}
	if !s.Open() {
		return ErrInvalidState
	}
	s.Status = StatusAccepted
	s.UpdatedAt = now.UTC()
	return nil
}

// Reject is receiver-only.
func (s *Swap) Reject(actor string, now time.Time) error {
	if actor != s.Receiver {
		return ErrNotReceiver
	}
	if !s.Open() {
		return ErrInvalidState
	}
	s.Status = StatusRejected
	s.UpdatedAt = now.UTC()
	return nil
}

// Counter lets the receiver offer a different listing of their own.
func (s *Swap) Counter(actor, counterListing, counterMessage string, now time.Time) error {
	if actor != s.Receiver {
		return ErrNotReceiver
	}
	if !s.Open() {
		return ErrInvalidState
	}
	if counterListing == "" {
		return ErrCounterRequired
	}
	if len(counterMessage) > 300 {
		return ErrMessageTooLong
	}
	s.Status = StatusCountered
	s.CounterListing = counterListing
	s.CounterMessage = counterMessage
	s.UpdatedAt = now.UTC()
	return nil
}

// AcceptCounter is proposer-only and requires an outstanding counter offer.
func (s *Swap) AcceptCounter(actor string, now time.Time) error {
	if actor != s.Proposer {
		return ErrNotProposer
	}
	if s.Status != StatusCountered {
		return ErrInvalidState
	}
	s.Status = StatusAccepted
	s.UpdatedAt = now.UTC()
	return nil
}

// Complete marks the physical exchange done; either party may call it.
func (s *Swap) Complete(actor string, now time.Time) error {
	if actor != s.Proposer && actor != s.Receiver {
		return ErrNotInvolved
	}
	if s.Status != StatusAccepted {
		return ErrInvalidState
	}
	s.Status = StatusCompleted
	s.UpdatedAt = now.UTC()
	return nil
}

// Cancel is proposer-only while the swap is still open.
func (s *Swap) Cancel(actor string, now time.Time) error {
	if actor != s.Proposer {
		return ErrNotProposer
	}
	if !s.Open() {
		return ErrInvalidState
	}
	s.Status = StatusCancelled
	s.UpdatedAt = now.UTC()
	return nil
}

// TradedListings returns the listings that change hands when the swap is
// accepted: the counter listing replaces the receiver's original when present.
func (s *Swap) TradedListings() []string {
	if s.CounterListing != "" {
		return []string{s.ProposerListing, s.CounterListing}
	}
	return []string{s.ProposerListing, s.ReceiverListing}
}

// Involves reports whether userID is the proposer or the receiver.
func (s *Swap) Involves(userID string) bool {
	return s.Proposer == userID || s.Receiver == userID
}
