package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/errmsg"
	"github.com/andymarkow/pandero/internal/idempotency"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/andymarkow/pandero/internal/server/models"
	"github.com/andymarkow/pandero/internal/storage"
)

// IdempotencyKeyHeader deduplicates payment submissions of one member.
const IdempotencyKeyHeader = "Idempotency-Key"

// GetUserSchedule returns the settlement schedule of the authenticated member.
func (h *Handlers) GetUserSchedule(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.subject(w, r)
	if !ok {
		return
	}

	h.writeSchedule(w, r, memberID)
}

// GetMemberSchedule returns the schedule of any member for administrators.
func (h *Handlers) GetMemberSchedule(w http.ResponseWriter, r *http.Request) {
	memberID := urlParam(r, "id")

	if _, err := h.storage.GetUser(r.Context(), memberID); err != nil {
		h.handleStorageError(w, "storage.GetUser()", err)

		return
	}

	h.writeSchedule(w, r, memberID)
}

func (h *Handlers) writeSchedule(w http.ResponseWriter, r *http.Request, memberID string) {
	snap, err := h.storage.Snapshot(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.Snapshot()", err)

		return
	}

	sched := computeSchedule(memberID, h.now(), snap)

	handleJSONResponse(w, http.StatusOK, scheduleResponse(sched))
}

func (h *Handlers) GetUserPayments(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.subject(w, r)
	if !ok {
		return
	}

	pmts, err := h.storage.GetPaymentsByMember(r.Context(), memberID)
	if err != nil {
		h.handleStorageError(w, "storage.GetPaymentsByMember()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, paymentsResponse(pmts))
}

// CreateUserPayment records a pending payment of the authenticated member
// towards the group they belong to.
func (h *Handlers) CreateUserPayment(w http.ResponseWriter, r *http.Request) {
	memberID, ok := h.subject(w, r)
	if !ok {
		return
	}

	var payload models.PaymentRequest

	if !h.decodeJSON(w, r, &payload) {
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if h.idem == nil {
		key = ""
	}

	if key != "" {
		id, err := h.idem.Lookup(memberID, key)

		switch {
		case err == nil:
			h.replayPayment(w, r, id)

			return
		case !errors.Is(err, idempotency.ErrKeyNotFound):
			h.log.Error("idempotency.Lookup()", slog.Any("error", err))
			handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

			return
		}
	}

	snap, err := h.storage.Snapshot(r.Context())
	if err != nil {
		h.handleStorageError(w, "storage.Snapshot()", err)

		return
	}

	sched := computeSchedule(memberID, h.now(), snap)
	if sched.Outcome != schedule.OutcomeResolved {
		h.log.Error("payment submitted without an active group",
			slog.String("member", memberID), slog.String("outcome", string(sched.Outcome)))
		handleError(w, errmsg.ErrMemberHasNoGroup)

		return
	}

	pmt, err := payments.NewPayment(memberID, sched.GroupName, payload.Amount, payload.WeekLabel, payload.AttachmentRef)
	if err != nil {
		h.log.Error("payments.NewPayment()", slog.Any("error", err))
		handlePaymentError(w, err)

		return
	}

	pmt.Date = h.now()

	if key != "" {
		id, err := h.idem.Remember(memberID, key, pmt.ID)
		if err != nil {
			h.log.Error("idempotency.Remember()", slog.Any("error", err))
			handleError(w, errmsg.NewHTTPError(http.StatusInternalServerError, err))

			return
		}

		if id != pmt.ID {
			h.replayPayment(w, r, id)

			return
		}
	}

	if err := h.storage.CreatePayment(r.Context(), pmt); err != nil {
		if errors.Is(err, storage.ErrPaymentAlreadyExists) {
			h.replayPayment(w, r, pmt.ID)

			return
		}

		if key != "" {
			if ferr := h.idem.Forget(memberID, key, pmt.ID); ferr != nil {
				h.log.Error("idempotency.Forget()", slog.Any("error", ferr))
			}
		}

		h.handleStorageError(w, "storage.CreatePayment()", err)

		return
	}

	handleJSONResponse(w, http.StatusCreated, paymentResponse(pmt))
}

// replayPayment answers a repeated submission with the payment stored first.
func (h *Handlers) replayPayment(w http.ResponseWriter, r *http.Request, id string) {
	pmt, err := h.storage.GetPayment(r.Context(), id)
	if err != nil {
		h.handleStorageError(w, "storage.GetPayment()", err)

		return
	}

	handleJSONResponse(w, http.StatusOK, paymentResponse(pmt))
}

func handlePaymentError(w http.ResponseWriter, err error) {
	if errors.Is(err, payments.ErrPaymentAmountInvalid) {
		handleError(w, errmsg.ErrPaymentAmountInvalid)

		return
	}

	handleError(w, errmsg.NewHTTPError(http.StatusUnprocessableEntity, err))
}
