package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/errmsg"
	"github.com/andymarkow/pandero/internal/metrics"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/andymarkow/pandero/internal/server/models"
)

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	usrs, err := h.storage.GetUsers(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.GetUsers()", err)

		return
	}

	resp := make([]models.UserResponse, 0, len(usrs))
	for _, usr := range usrs {
		resp = append(resp, userResponse(usr))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload models.UserRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	usr, err := users.NewUser(payload.ID, payload.Name, payload.Contact)
	if err != nil {
		h.log.Error("users.NewUser()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))

		return
	}

	if err := h.storage.CreateUser(r.Context(), usr); err != nil {
		h.handleStorageError(w, "storage.CreateUser()", err)

		return
	}

	handleJSONResponse(w, http.StatusCreated, userResponse(usr))
}

func (h *Handlers) GetGroups(w http.ResponseWriter, r *http.Request) {
	grps, err := h.storage.GetGroups(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.GetGroups()", err)

		return
	}

	resp := make([]models.GroupResponse, 0, len(grps))
	for _, grp := range grps {
		resp = append(resp, groupResponse(grp))
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload models.GroupRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	params, err := groupParams(payload)
	if err != nil {
		h.log.Error("groupParams()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))

		return
	}

	grp, err := groups.NewGroup(payload.Name, params)
	if err != nil {
		h.log.Error("groups.NewGroup()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))

		return
	}

	if err := h.storage.CreateGroup(r.Context(), grp); err != nil {
		h.handleStorageError(w, "storage.CreateGroup()", err)

		return
	}

	handleJSONResponse(w, http.StatusCreated, groupResponse(grp))
}

// GetGroupSummary returns the derived figures of a group: end date, current
// week, member count and payments awaiting review.
func (h *Handlers) GetGroupSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.storage.Snapshot(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.Snapshot()", err)

		return
	}

	summary, err := schedule.Summarize(urlParam(r, "name"), h.now(), snap)
	if err != nil {
		h.log.Error("schedule.Summarize()", slog.Any("error", err))

		if errors.Is(err, schedule.ErrGroupNotFound) {
			handleError(w, errmsg.ErrGroupNotFound)

			return
		}

		handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

		return
	}

	handleJSONResponse(w, http.StatusOK, summaryResponse(summary))
}

// UpdateGroup replaces the parameters of an existing group. The name in the
// payload is ignored; groups are addressed by the URL.
func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var payload models.GroupRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	grp, err := h.storage.GetGroup(r.Context(), urlParam(r, "name"))
	if err != nil {
		h.handleStorageError(w, "storage.GetGroup()", err)

		return
	}

	params, err := groupParams(payload)
	if err == nil {
		err = grp.Apply(params)
	}

	if err != nil {
		h.log.Error("group.Apply()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))

		return
	}

	if err := h.storage.UpdateGroup(r.Context(), grp); err != nil {
		h.handleStorageError(w, "storage.UpdateGroup()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, groupResponse(grp))
}

func groupParams(payload models.GroupRequest) (groups.Params, error) {
	start, err := time.Parse(groups.DateLayout, strings.TrimSpace(payload.StartDate))
	if err != nil {
		return groups.Params{}, err //nolint:wrapcheck
	}

	return groups.Params{
		StartDate:     start,
		DurationWeeks: payload.DurationWeeks,
		BaseAmount:    payload.BaseAmount,
		PremiumAmount: payload.PremiumAmount,
	}, nil
}

// GetGroupMembers lists the members of a group with their current schedule.
func (h *Handlers) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	if _, err := h.storage.GetGroup(r.Context(), name); err != nil {
		h.handleStorageError(w, "storage.GetGroup()", err)

		return
	}

	snap, err := h.storage.Snapshot(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.Snapshot()", err)

		return
	}

	names := make(map[string]string, len(snap.Users))
	for _, usr := range snap.Users {
		if _, ok := names[usr.ID]; !ok {
			names[usr.ID] = usr.Name
		}
	}

	now := h.now()

	resp := make([]models.MemberResponse, 0)

	for _, m := range snap.Memberships {
		if m.GroupName != name {
			continue
		}

		member := models.MemberResponse{
			MemberID: m.MemberID,
			Name:     names[m.MemberID],
			Turn:     m.Turn,
			Share:    m.Share.String(),
		}

		// A member's schedule follows their first membership; rows imported
		// for a second group get no schedule here.
		if sched := computeSchedule(m.MemberID, now, snap); sched.GroupName == name {
			view := scheduleResponse(sched)
			member.Schedule = &view
		}

		resp = append(resp, member)
	}

	handleJSONResponse(w, http.StatusOK, resp)
}

func (h *Handlers) CreateGroupMember(w http.ResponseWriter, r *http.Request) {
	var payload models.MembershipRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	name := urlParam(r, "name")

	if _, err := h.storage.GetGroup(r.Context(), name); err != nil {
		h.handleStorageError(w, "storage.GetGroup()", err)

		return
	}

	if _, err := h.storage.GetUser(r.Context(), payload.MemberID); err != nil {
		h.handleStorageError(w, "storage.GetUser()", err)

		return
	}

	snap, err := h.storage.Snapshot(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.Snapshot()", err)

		return
	}

	for _, m := range snap.Memberships {
		if m.MemberID == payload.MemberID && m.GroupName != name {
			h.log.Error("member enrolled in another group",
				slog.String("member", payload.MemberID), slog.String("group", m.GroupName))
			handleError(w, errmsg.ErrMemberInAnotherGroup)

			return
		}
	}

	share, err := members.ParseShare(payload.Share)
	if err != nil {
		h.log.Error("members.ParseShare()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))

		return
	}

	membership, err := members.NewMembership(name, payload.MemberID, payload.Turn, share)
	if err != nil {
		h.log.Error("members.NewMembership()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))

		return
	}

	if err := h.storage.CreateMembership(r.Context(), membership); err != nil {
		h.handleStorageError(w, "storage.CreateMembership()", err)

		return
	}

	handleJSONResponse(w, http.StatusCreated, models.MemberResponse{
		MemberID: membership.MemberID,
		Turn:     membership.Turn,
		Share:    membership.Share.String(),
	})
}

// DrawGroupTurns assigns turns 1..N to the members of a group at random.
func (h *Handlers) DrawGroupTurns(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	if _, err := h.storage.GetGroup(r.Context(), name); err != nil {
		h.handleStorageError(w, "storage.GetGroup()", err)

		return
	}

	ms, err := h.storage.GetMembershipsByGroup(r.Context(), name)
	if err != nil {
		h.handleStorageError(w, "storage.GetMembershipsByGroup()", err)

		return
	}

	turns, err := members.DrawTurns(ms, h.rnd)
	if err != nil {
		h.log.Error("members.DrawTurns()", slog.Any("error", err))
		handleError(w, errmsg.NewHTTPError(http.StatusConflict, err))

		return
	}

	if err := h.storage.UpdateMembershipTurns(r.Context(), name, turns); err != nil {
		h.handleStorageError(w, "storage.UpdateMembershipTurns()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, models.TurnsResponse{Turns: turns})
}

// GetGroupPayments lists a group's payments with the requested statuses,
// pending ones when none is given.
func (h *Handlers) GetGroupPayments(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")

	statuses := []payments.Status{payments.StatusPending}

	if values := r.URL.Query()["status"]; len(values) > 0 {
		statuses = statuses[:0]

		for _, v := range values {
			status, err := payments.ParseStatus(v)
			if err != nil {
				h.log.Error("payments.ParseStatus()", slog.Any("error", err))
				handleError(w, errmsg.NewHTTPError(http.StatusBadRequest, err))

				return
			}

			statuses = append(statuses, status)
		}
	}

	if _, err := h.storage.GetGroup(r.Context(), name); err != nil {
		h.handleStorageError(w, "storage.GetGroup()", err)

		return
	}

	pmts, err := h.storage.GetPaymentsByGroup(r.Context(), name, statuses...)
	if err != nil {
		h.handleStorageError(w, "storage.GetPaymentsByGroup()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, paymentsResponse(pmts))
}

// CreateCashPayment records an already approved payment handed to the admin.
func (h *Handlers) CreateCashPayment(w http.ResponseWriter, r *http.Request) {
	var payload models.CashPaymentRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	name := urlParam(r, "name")

	if _, err := h.storage.GetGroup(r.Context(), name); err != nil {
		h.handleStorageError(w, "storage.GetGroup()", err)

		return
	}

	ms, err := h.storage.GetMembershipsByGroup(r.Context(), name)
	if err != nil {
		h.handleStorageError(w, "storage.GetMembershipsByGroup()", err)

		return
	}

	if !hasMember(ms, payload.MemberID) {
		h.log.Error("cash payment for a non-member",
			slog.String("group", name), slog.String("member", payload.MemberID))
		handleError(w, errmsg.ErrUserNotFound)

		return
	}

	pmt, err := payments.NewCashPayment(payload.MemberID, name, payload.Amount, payload.WeekLabel)
	if err != nil {
		h.log.Error("payments.NewCashPayment()", slog.Any("error", err))
		handlePaymentError(w, err)

		return
	}

	pmt.Date = h.now()

	if err := h.storage.CreatePayment(r.Context(), pmt); err != nil {
		h.handleStorageError(w, "storage.CreatePayment()", err)

		return
	}

	metrics.PaymentsReviewed.WithLabelValues(pmt.Status.String()).Inc()

	handleJSONResponse(w, http.StatusCreated, paymentResponse(pmt))
}

func hasMember(ms []*members.Membership, memberID string) bool {
	for _, m := range ms {
		if m.MemberID == memberID {
			return true
		}
	}

	return false
}

func (h *Handlers) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	h.reviewPayment(w, r, payments.StatusApproved)
}

func (h *Handlers) RejectPayment(w http.ResponseWriter, r *http.Request) {
	h.reviewPayment(w, r, payments.StatusRejected)
}

func (h *Handlers) reviewPayment(w http.ResponseWriter, r *http.Request, status payments.Status) {
	pmt, err := h.storage.SetPaymentStatus(r.Context(), urlParam(r, "id"), status)
	if err != nil {
		h.handleStorageError(w, "storage.SetPaymentStatus()", err)

		return
	}

	metrics.PaymentsReviewed.WithLabelValues(status.String()).Inc()

	handleJSONResponse(w, http.StatusOK, paymentResponse(pmt))
}
