package models

import (
	"github.com/shopspring/decimal"
)

type UserLoginRequest struct {
	ID string `json:"id"`
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

type GroupRequest struct {
	Name          string          `json:"name"`
	StartDate     string          `json:"start_date"`
	DurationWeeks int             `json:"duration_weeks"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	PremiumAmount decimal.Decimal `json:"premium_amount"`
}

// GroupResponse echoes the stored fields as they are, malformed or not.
type GroupResponse struct {
	Name          string `json:"name"`
	StartDate     string `json:"start_date"`
	DurationWeeks string `json:"duration_weeks"`
	BaseAmount    string `json:"base_amount"`
	PremiumAmount string `json:"premium_amount"`
}

type GroupSummaryResponse struct {
	Name          string          `json:"name"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	CurrentWeek   int             `json:"current_week"`
	DurationWeeks int             `json:"duration_weeks"`
	Members       int             `json:"members"`
	PendingReview int             `json:"pending_review"`
	BaseAmount    decimal.Decimal `json:"base_amount"`
	PremiumAmount decimal.Decimal `json:"premium_amount"`
}

type MembershipRequest struct {
	MemberID string `json:"member_id"`
	Turn     int    `json:"turn"`
	Share    string `json:"share"`
}

type WeekResponse struct {
	Number int             `json:"week"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	State  string          `json:"state"`
}

type ScheduleResponse struct {
	Outcome       string          `json:"outcome"`
	GroupName     string          `json:"group,omitempty"`
	Share         string          `json:"share"`
	OverdueWeeks  int             `json:"overdue_weeks"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
	Weeks         []WeekResponse  `json:"weeks"`
}

type MemberResponse struct {
	MemberID string            `json:"member_id"`
	Name     string            `json:"name,omitempty"`
	Turn     string            `json:"turn"`
	Share    string            `json:"share"`
	Schedule *ScheduleResponse `json:"schedule,omitempty"`
}

type TurnsResponse struct {
	Turns map[string]int `json:"turns"`
}

type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	WeekLabel     string          `json:"week_label"`
	AttachmentRef string          `json:"attachment_ref"`
}

type CashPaymentRequest struct {
	MemberID  string          `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	WeekLabel string          `json:"week_label"`
}

type PaymentResponse struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	MemberID      string `json:"member_id"`
	GroupName     string `json:"group"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
	WeekLabel     string `json:"week_label,omitempty"`
}
