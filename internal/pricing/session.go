package pricing

import (
	"strings"
	"time"

	"github.com/clothify/shop-api/internal/model"
)

// CouponState describes the coupon slot of a checkout session.
type CouponState int

const (
	// CouponStateNone means no coupon is applied and no application failed
	CouponStateNone CouponState = iota
	// CouponStateApplied means a coupon is currently applied
	CouponStateApplied
	// CouponStateFailed means the last application attempt failed and no
	// coupon is applied
	CouponStateFailed
)

// Session is an explicit checkout state container: enriched cart lines plus
// the applied coupon, with all mutations going through methods that enforce
// the stock and eligibility rules. It replaces ambient mutable store
// singletons; callers hold one Session per cart session.
//
// The package has two consumption modes. The HTTP services keep cart state
// in Postgres and call Enrich and Summarize directly; Session is the
// in-memory rendition of the same rules for embedders that hold a cart
// client-side (a POS terminal, a kiosk) and sync on checkout.
//
// Session is not safe for concurrent use.
type Session struct {
	policy  Policy
	now     func() time.Time
	items   []model.EnrichedCartItem
	applied *model.Coupon
	lastErr error
}

// NewSession creates a Session with the given pricing policy.
func NewSession(policy Policy) *Session {
	return NewSessionWithClock(policy, time.Now)
}

// NewSessionWithClock creates a Session with a custom clock.
// Primarily used for testing time-window rules.
func NewSessionWithClock(policy Policy, now func() time.Time) *Session {
	return &Session{policy: policy, now: now}
}

// SetItems replaces the session's cart lines with a fresh enriched snapshot.
func (s *Session) SetItems(items []model.EnrichedCartItem) {
	s.items = make([]model.EnrichedCartItem, len(items))
	copy(s.items, items)
}

// Items returns a copy of the session's cart lines.
func (s *Session) Items() []model.EnrichedCartItem {
	items := make([]model.EnrichedCartItem, len(s.items))
	copy(items, s.items)
	return items
}

// ChangeQuantity applies the quantity guard to one line. A requested
// quantity below 1 removes the line. A requested quantity above the line's
// MaxStock returns ErrExceedsStock and changes nothing. Changes are atomic
// per line.
func (s *Session) ChangeQuantity(itemID int64, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(itemID)
	}
	for i := range s.items {
		if s.items[i].ID != itemID {
			continue
		}
		if s.items[i].MaxStock != nil && quantity > *s.items[i].MaxStock {
			return ErrExceedsStock
		}
		s.items[i].Quantity = quantity
		return nil
	}
	return ErrItemNotFound
}

// RemoveItem deletes one line from the session.
func (s *Session) RemoveItem(itemID int64) error {
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear empties the cart and drops the applied coupon.
func (s *Session) Clear() {
	s.items = nil
	s.applied = nil
	s.lastErr = nil
}

// ApplyCoupon looks the code up case-insensitively among the coupons that
// are currently eligible for display and applies it when the subtotal meets
// its minimum order total. On failure the previously applied coupon, if
// any, stays applied.
func (s *Session) ApplyCoupon(code string, coupons []model.Coupon) error {
	var found *model.Coupon
	for _, c := range Eligible(coupons, s.now()) {
		if strings.EqualFold(c.Code, code) {
			found = &c
			break
		}
	}
	if found == nil {
		s.lastErr = ErrCouponNotFound
		return ErrCouponNotFound
	}

	subtotal := Summarize(s.items, nil, s.policy).Subtotal
	if found.MinOrderTotal != nil && subtotal.LessThan(*found.MinOrderTotal) {
		s.lastErr = ErrCouponNotEligible
		return ErrCouponNotEligible
	}

	s.applied = found
	s.lastErr = nil
	return nil
}

// RemoveCoupon clears the applied coupon. No server round-trip is needed;
// removal is purely local.
func (s *Session) RemoveCoupon() {
	s.applied = nil
	s.lastErr = nil
}

// AppliedCoupon returns the currently applied coupon, or nil.
func (s *Session) AppliedCoupon() *model.Coupon {
	return s.applied
}

// State reports the coupon slot state. A failed application does not unseat
// a previously applied coupon, so Applied wins over Failed.
func (s *Session) State() CouponState {
	switch {
	case s.applied != nil:
		return CouponStateApplied
	case s.lastErr != nil:
		return CouponStateFailed
	default:
		return CouponStateNone
	}
}

// Summary computes the current pricing summary snapshot.
func (s *Session) Summary() model.CartSummary {
	return Summarize(s.items, s.applied, s.policy)
}
