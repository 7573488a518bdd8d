//nolint:wrapcheck
package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultWeekLabel     = "Varias"
	DefaultAttachmentRef = "Pendiente_Storage"
)

var (
	ErrPaymentGroupEmpty       = errors.New("payment group name is empty")
	ErrPaymentAmountInvalid    = errors.New("payment amount must be positive")
	ErrPaymentStatusInvalid    = errors.New("payment status is invalid")
	ErrPaymentTransitionDenied = errors.New("payment is not pending")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts the canonical names as well as the spreadsheet's
// Spanish labels.
func ParseStatus(status string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending", "pendiente":
		return StatusPending, nil
	case "approved", "aprobado":
		return StatusApproved, nil
	case "rejected", "rechazado":
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrPaymentStatusInvalid, status)
	}
}

// Payment asserts that a member paid an amount into a group. Amount is text
// and is parsed on read; WeekLabel is display-only.
type Payment struct {
	ID            string
	Date          time.Time
	MemberID      string
	GroupName     string
	Amount        string
	Status        Status
	AttachmentRef string
	WeekLabel     string
}

// NewPayment creates a pending payment submitted by a member.
func NewPayment(memberID, groupName string, amount decimal.Decimal, weekLabel, attachmentRef string) (*Payment, error) {
	if err := users.ValidateID(memberID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(groupName) == "" {
		return nil, ErrPaymentGroupEmpty
	}

	if !amount.IsPositive() {
		return nil, ErrPaymentAmountInvalid
	}

	if weekLabel == "" {
		weekLabel = DefaultWeekLabel
	}

	if attachmentRef == "" {
		attachmentRef = DefaultAttachmentRef
	}

	return &Payment{
		ID:            uuid.NewString(),
		Date:          time.Now(),
		MemberID:      memberID,
		GroupName:     groupName,
		Amount:        amount.String(),
		Status:        StatusPending,
		AttachmentRef: attachmentRef,
		WeekLabel:     weekLabel,
	}, nil
}

// NewCashPayment records money handed to an admin. It skips review and is
// approved from the start.
func NewCashPayment(memberID, groupName string, amount decimal.Decimal, weekLabel string) (*Payment, error) {
	pmt, err := NewPayment(memberID, groupName, amount, weekLabel, "cash")
	if err != nil {
		return nil, err
	}

	pmt.Status = StatusApproved

	return pmt, nil
}

// Transition returns the status after moving from current to target. Only
// pending payments may be approved or rejected.
func Transition(current, target Status) (Status, error) {
	if current != StatusPending {
		return current, fmt.Errorf("%w: %s", ErrPaymentTransitionDenied, current)
	}

	if target != StatusApproved && target != StatusRejected {
		return current, fmt.Errorf("%w: %s", ErrPaymentStatusInvalid, target)
	}

	return target, nil
}
