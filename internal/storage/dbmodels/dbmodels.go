package dbmodels

import (
	"time"
)

type User struct {
	ID      string
	Name    string
	Contact string
}

type Group struct {
	Name          string
	StartDate     string
	DurationWeeks string
	BaseAmount    string
	PremiumAmount string
}

type Membership struct {
	GroupName string
	MemberID  string
	Turn      string
	Share     string
}

type Payment struct {
	ID            string
	PaidAt        time.Time
	MemberID      string
	GroupName     string
	Amount        string
	Status        string
	AttachmentRef string
	WeekLabel     string
}
