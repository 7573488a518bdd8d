package handlers

import (
	"time"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/metrics"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/andymarkow/pandero/internal/server/models"
)

func userResponse(usr *users.User) models.UserResponse {
	return models.UserResponse{ID: usr.ID, Name: usr.Name, Contact: usr.Contact}
}

func groupResponse(grp *groups.Group) models.GroupResponse {
	return models.GroupResponse{
		Name:          grp.Name,
		StartDate:     grp.StartDate,
		DurationWeeks: grp.DurationWeeks,
		BaseAmount:    grp.BaseAmount,
		PremiumAmount: grp.PremiumAmount,
	}
}

func summaryResponse(summary schedule.GroupSummary) models.GroupSummaryResponse {
	return models.GroupSummaryResponse{
		Name:          summary.Name,
		StartDate:     summary.Config.StartDate.Format(groups.DateLayout),
		EndDate:       summary.EndDate.Format(groups.DateLayout),
		CurrentWeek:   summary.CurrentWeek,
		DurationWeeks: summary.Config.DurationWeeks,
		Members:       summary.Members,
		PendingReview: summary.PendingReview,
		BaseAmount:    summary.Config.BaseAmount,
		PremiumAmount: summary.Config.PremiumAmount,
	}
}

func scheduleResponse(sched schedule.Schedule) models.ScheduleResponse {
	resp := models.ScheduleResponse{
		Outcome:       string(sched.Outcome),
		GroupName:     sched.GroupName,
		Share:         sched.Share.String(),
		OverdueWeeks:  sched.OverdueWeeks(),
		SettledAmount: sched.SettledAmount(),
		Weeks:         make([]models.WeekResponse, 0, len(sched.Weeks)),
	}

	for _, w := range sched.Weeks {
		resp.Weeks = append(resp.Weeks, models.WeekResponse{
			Number: w.Number,
			Date:   w.Date.Format(groups.DateLayout),
			Amount: w.Amount,
			State:  w.State.String(),
		})
	}

	return resp
}

func paymentResponse(pmt *payments.Payment) models.PaymentResponse {
	return models.PaymentResponse{
		ID:            pmt.ID,
		Date:          pmt.Date.Format(time.RFC3339),
		MemberID:      pmt.MemberID,
		GroupName:     pmt.GroupName,
		Amount:        pmt.Amount,
		Status:        pmt.Status.String(),
		AttachmentRef: pmt.AttachmentRef,
		WeekLabel:     pmt.WeekLabel,
	}
}

func paymentsResponse(pmts []*payments.Payment) []models.PaymentResponse {
	resp := make([]models.PaymentResponse, 0, len(pmts))
	for _, pmt := range pmts {
		resp = append(resp, paymentResponse(pmt))
	}

	return resp
}

// computeSchedule runs the engine and records the outcome.
func computeSchedule(memberID string, now time.Time, snap *schedule.Snapshot) schedule.Schedule {
	sched := schedule.Compute(memberID, now, snap)

	metrics.SchedulesComputed.WithLabelValues(string(sched.Outcome)).Inc()

	return sched
}
