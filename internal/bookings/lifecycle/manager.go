// Package lifecycle drives a booking through its status machine and
// reconciles recorded payments against the total.
package lifecycle

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	bookingserrors "lodge/internal/bookings/errors"
	"lodge/pkg/model"
)

var transitions = map[string][]string{
	model.StatusUnconfirmed: {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed:   {model.StatusCheckedIn, model.StatusCancelled},
	model.StatusCheckedIn:   {model.StatusCheckedOut, model.StatusCancelled},
	model.StatusCheckedOut:  {},
	model.StatusCancelled:   {},
}

func IsKnownStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

func IsTerminal(status string) bool {
	next, ok := transitions[status]
	return !ok || len(next) == 0
}

func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

func IsPaymentMethod(method string) bool {
	return slices.Contains(model.PaymentMethods, method)
}

// Outcome records what Apply actually changed.
type Outcome struct {
	PreviousStatus  string
	Status          string
	StatusChanged   bool
	PaymentRecorded bool
	AmountPaid      float64
}

type Manager struct {
	now func() time.Time
}

func NewManager() *Manager {
	return &Manager{now: func() time.Time { return time.Now().UTC() }}
}

// NewManagerWithClock is used by tests that assert on timestamps.
func NewManagerWithClock(now func() time.Time) *Manager {
	return &Manager{now: now}
}

// Apply runs an optional status change and an optional payment against the
// same in-memory booking. Nothing is mutated when either input is rejected.
func (m *Manager) Apply(b *model.Booking, status *string, payment *model.PaymentRecord) (Outcome, error) {
	out := Outcome{PreviousStatus: b.Status, Status: b.Status}

	if payment != nil {
		if err := ValidatePayment(*payment); err != nil {
			return out, err
		}
	}
	if status != nil && *status != b.Status && !CanTransition(b.Status, *status) {
		return out, invalidTransition(b.Status, *status)
	}

	if status != nil {
		changed, err := m.Transition(b, *status)
		if err != nil {
			return out, err
		}
		out.StatusChanged = changed
		out.Status = b.Status
	}
	if payment != nil {
		if err := m.RecordPayment(b, *payment); err != nil {
			return out, err
		}
		out.PaymentRecorded = true
		out.AmountPaid = payment.AmountPaid
	}
	return out, nil
}

// Transition moves b to target. Repeating the current status is a no-op and
// reports changed=false.
func (m *Manager) Transition(b *model.Booking, target string) (bool, error) {
	if !IsKnownStatus(target) {
		return false, fmt.Errorf("%w: unknown status %q", bookingserrors.ErrInvalidTransition, target)
	}
	if target == b.Status {
		return false, nil
	}
	if !CanTransition(b.Status, target) {
		return false, invalidTransition(b.Status, target)
	}

	now := m.now()
	switch target {
	case model.StatusCheckedIn:
		if b.CheckInTime == nil {
			b.CheckInTime = &now
		}
	case model.StatusCheckedOut:
		if b.CheckOutTime == nil {
			b.CheckOutTime = &now
		}
	}
	b.Status = target
	return true, nil
}

// RecordPayment adds amountPaid to what has been paid so far. Overpayment is
// accepted and floors the remaining amount at zero.
func (m *Manager) RecordPayment(b *model.Booking, p model.PaymentRecord) error {
	if err := ValidatePayment(p); err != nil {
		return err
	}

	b.DepositAmount += p.AmountPaid
	b.DepositPaid = true
	b.PaymentMethod = p.PaymentMethod
	b.Reconcile()

	if notes := strings.TrimSpace(p.Notes); notes != "" {
		b.Observations = AppendParagraph(b.Observations, notes)
	}
	return nil
}

func ValidatePayment(p model.PaymentRecord) error {
	if !IsPaymentMethod(p.PaymentMethod) {
		return fmt.Errorf("%w: paymentMethod must be one of: %s", bookingserrors.ErrInvalidPayment, strings.Join(model.PaymentMethods, ", "))
	}
	if math.IsNaN(p.AmountPaid) || math.IsInf(p.AmountPaid, 0) || p.AmountPaid <= 0 {
		return fmt.Errorf("%w: amountPaid must be greater than 0", bookingserrors.ErrInvalidPayment)
	}
	return nil
}

func AppendParagraph(existing, paragraph string) string {
	existing = strings.TrimRight(existing, " \t\n")
	if existing == "" {
		return paragraph
	}
	return existing + "\n\n" + paragraph
}

func invalidTransition(from, to string) error {
	if IsTerminal(from) {
		return fmt.Errorf("%w: booking is %s and can no longer change status", bookingserrors.ErrInvalidTransition, from)
	}
	return fmt.Errorf("%w: cannot move booking from %s to %s", bookingserrors.ErrInvalidTransition, from, to)
}
