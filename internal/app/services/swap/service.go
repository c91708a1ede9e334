package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "threadly/internal/app/outbox"
	domainlisting "threadly/internal/domain/listing"
	domainnotification "threadly/internal/domain/notification"
	"threadly/internal/domain/shared/events"
	domainswap "threadly/internal/domain/swap"
)

var (
	ErrNotListingOwner = errors.New("swap: you can only offer your own listing")
)

type Service struct {
	Swaps         domainswap.Repository
	Listings      domainlisting.Repository
	Notifications domainnotification.Repository
	Outbox        appoutbox.Outbox
	Logger        *slog.Logger
}

type ProposeParams struct {
	Proposer        string
	ProposerListing domainlisting.ID
	ReceiverListing domainlisting.ID
	Message         string
}

// Propose opens a swap: the proposer offers one of their active listings for
// someone else's. A listing pair with an open negotiation cannot be proposed
// again.
func (s *Service) Propose(ctx context.Context, params ProposeParams) (*domainswap.Swap, error) {
	offered, err := s.Listings.ByID(ctx, params.ProposerListing)
	if err != nil {
		return nil, err
	}
	if offered.Seller != params.Proposer {
		return nil, ErrNotListingOwner
	}
	if !offered.IsActive() {
		return nil, domainlisting.ErrNotActive
	}
	wanted, err := s.Listings.ByID(ctx, params.ReceiverListing)
	if err != nil {
		return nil, err
	}
	if !wanted.IsActive() {
		return nil, domainlisting.ErrNotActive
	}

	if _, err := s.Swaps.FindOpen(ctx, string(params.ProposerListing), string(params.ReceiverListing)); err == nil {
		return nil, domainswap.ErrDuplicateSwap
	} else if !errors.Is(err, domainswap.ErrNotFound) {
		return nil, err
	}

	sw, err := domainswap.New(uuid.NewString(), params.Proposer, wanted.Seller,
		string(params.ProposerListing), string(params.ReceiverListing), params.Message, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Swaps.Save(ctx, sw); err != nil {
		return nil, err
	}

	s.notify(ctx, sw.Receiver, domainnotification.TypeSwapProposed,
		fmt.Sprintf("Someone wants to swap for %q", wanted.Title), "/swaps/"+sw.ID)
	s.recordEvent(ctx, "swap.proposed", sw)
	if s.Logger != nil {
		s.Logger.Info("swap proposed", "swap_id", sw.ID, "proposer", sw.Proposer, "receiver", sw.Receiver)
	}
	return sw, nil
}

// Accept closes the negotiation and marks both traded listings swapped.
func (s *Service) Accept(ctx context.Context, callerID, swapID string) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if err := sw.Accept(callerID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.finishAccept(ctx, sw); err != nil {
		return nil, err
	}
	s.notify(ctx, sw.Proposer, domainnotification.TypeSwapAccepted, "Your swap was accepted", "/swaps/"+sw.ID)
	s.recordEvent(ctx, "swap.accepted", sw)
	return sw, nil
}

func (s *Service) Reject(ctx context.Context, callerID, swapID string) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if err := sw.Reject(callerID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Swaps.Save(ctx, sw); err != nil {
		return nil, err
	}
	s.notify(ctx, sw.Proposer, domainnotification.TypeSwapRejected, "Your swap was declined", "/swaps/"+sw.ID)
	s.recordEvent(ctx, "swap.rejected", sw)
	return sw, nil
}

type CounterParams struct {
	Caller         string
	SwapID         string
	CounterListing domainlisting.ID
	Message        string
}

// Counter lets the receiver offer a different listing of their own instead.
func (s *Service) Counter(ctx context.Context, params CounterParams) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, params.SwapID)
	if err != nil {
		return nil, err
	}
	counter, err := s.Listings.ByID(ctx, params.CounterListing)
	if err != nil {
		return nil, err
	}
	if counter.Seller != params.Caller {
		return nil, ErrNotListingOwner
	}
	if !counter.IsActive() {
		return nil, domainlisting.ErrNotActive
	}
	if err := sw.Counter(params.Caller, string(params.CounterListing), params.Message, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Swaps.Save(ctx, sw); err != nil {
		return nil, err
	}
	s.notify(ctx, sw.Proposer, domainnotification.TypeSwapCountered,
		fmt.Sprintf("Counter offer: %q", counter.Title), "/swaps/"+sw.ID)
	s.recordEvent(ctx, "swap.countered", sw)
	return sw, nil
}

// AcceptCounter is the proposer taking the receiver's counter offer.
func (s *Service) AcceptCounter(ctx context.Context, callerID, swapID string) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if err := sw.AcceptCounter(callerID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.finishAccept(ctx, sw); err != nil {
		return nil, err
	}
	s.notify(ctx, sw.Receiver, domainnotification.TypeSwapAccepted, "Your counter offer was accepted", "/swaps/"+sw.ID)
	s.recordEvent(ctx, "swap.accepted", sw)
	return sw, nil
}

func (s *Service) Complete(ctx context.Context, callerID, swapID string) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if err := sw.Complete(callerID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Swaps.Save(ctx, sw); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, "swap.completed", sw)
	return sw, nil
}

func (s *Service) Cancel(ctx context.Context, callerID, swapID string) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if err := sw.Cancel(callerID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Swaps.Save(ctx, sw); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, "swap.cancelled", sw)
	return sw, nil
}

func (s *Service) Get(ctx context.Context, callerID, swapID string) (*domainswap.Swap, error) {
	sw, err := s.Swaps.ByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !sw.Involves(callerID) {
		return nil, domainswap.ErrNotInvolved
	}
	return sw, nil
}

func (s *Service) MySwaps(ctx context.Context, callerID string) ([]*domainswap.Swap, error) {
	return s.Swaps.ByParticipant(ctx, callerID)
}

// finishAccept persists the accepted swap and takes both traded listings off
// the market.
func (s *Service) finishAccept(ctx context.Context, sw *domainswap.Swap) error {
	if err := s.Swaps.Save(ctx, sw); err != nil {
		return err
	}
	now := time.Now()
	for _, listingID := range sw.TradedListings() {
		l, err := s.Listings.ByID(ctx, domainlisting.ID(listingID))
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("traded listing not found", "listing_id", listingID, "error", err)
			}
			continue
		}
		if err := l.MarkSwapped(now); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("traded listing not active", "listing_id", listingID, "error", err)
			}
			continue
		}
		if err := s.Listings.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
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

func (s *Service) recordEvent(ctx context.Context, name string, sw *domainswap.Swap) {
	err := appoutbox.Record(ctx, s.Outbox,
		events.NewSwapEvent(name, sw.ID, sw.Proposer, sw.Receiver, string(sw.Status), time.Now()))
	if err != nil && s.Logger != nil {
		s.Logger.Warn("swap event not recorded", "swap_id", sw.ID, "error", err)
	}
}
