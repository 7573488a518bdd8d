package sheetclient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andymarkow/pandero/internal/domain/groups"
	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
)

// Column headers of the spreadsheet.
const (
	ColUserName    = "Nombre"
	ColUserID      = "DNI"
	ColUserContact = "Celular"

	ColGroupName     = "NombreGrupo"
	ColGroupStart    = "FechaInicio"
	ColGroupDuration = "SemanasDuracion"
	ColGroupBase     = "MontoBase"
	ColGroupPremium  = "MontoInteres"

	ColMemberGroup = "NombreGrupo"
	ColMemberID    = "DNI_Usuario"
	ColMemberTurn  = "Turno"
	ColMemberShare = "Tipo"

	ColPaymentDate       = "Fecha"
	ColPaymentMember     = "DNI"
	ColPaymentGroup      = "Grupo"
	ColPaymentAmount     = "Monto"
	ColPaymentStatus     = "Estado"
	ColPaymentAttachment = "Foto"
	ColPaymentWeek       = "SemanaPagada"
)

var (
	ErrRowKeyMissing = errors.New("row key column is empty")
	ErrRowDate       = errors.New("row date is invalid")
)

// paymentNamespace seeds the ids derived for imported payment rows.
var paymentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pandero:payments"))

func (r Row) get(col string) string {
	return strings.TrimSpace(r[col])
}

func (r Row) require(col string) (string, error) {
	v := r.get(col)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrRowKeyMissing, col)
	}

	return v, nil
}

func (r Row) User() (*users.User, error) {
	return users.NewUser(r.get(ColUserID), r.get(ColUserName), r.get(ColUserContact)) //nolint:wrapcheck
}

// Group keeps the row's fields as they are; malformed values fall back to
// defaults only when a schedule is computed.
func (r Row) Group() (*groups.Group, error) {
	name, err := r.require(ColGroupName)
	if err != nil {
		return nil, err
	}

	return &groups.Group{
		Name:          name,
		StartDate:     r.get(ColGroupStart),
		DurationWeeks: r.get(ColGroupDuration),
		BaseAmount:    r.get(ColGroupBase),
		PremiumAmount: r.get(ColGroupPremium),
	}, nil
}

// Membership reads an unknown share label as a full share.
func (r Row) Membership() (*members.Membership, error) {
	group, err := r.require(ColMemberGroup)
	if err != nil {
		return nil, err
	}

	memberID, err := r.require(ColMemberID)
	if err != nil {
		return nil, err
	}

	share, err := members.ParseShare(r.get(ColMemberShare))
	if err != nil {
		share = members.ShareFull
	}

	return &members.Membership{
		GroupName: group,
		MemberID:  memberID,
		Turn:      r.get(ColMemberTurn),
		Share:     share,
	}, nil
}

// Payment builds the payment of a row. occurrence tells apart identical rows
// of the same tab so that each gets its own id. The status is not part of
// the id, so a row whose status changed in the sheet maps to the payment
// already stored; the import keeps the stored status.
func (r Row) Payment(occurrence int) (*payments.Payment, error) {
	memberID, err := r.require(ColPaymentMember)
	if err != nil {
		return nil, err
	}

	group, err := r.require(ColPaymentGroup)
	if err != nil {
		return nil, err
	}

	rawDate := r.get(ColPaymentDate)
	datePart, _, _ := strings.Cut(rawDate, " ")

	date, err := time.ParseInLocation(groups.DateLayout, datePart, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrRowDate, rawDate)
	}

	status, err := payments.ParseStatus(r.get(ColPaymentStatus))
	if err != nil {
		status = payments.Status(r.get(ColPaymentStatus))
	}

	return &payments.Payment{
		ID:            uuid.NewSHA1(paymentNamespace, []byte(r.PaymentKey()+"\x1f"+strconv.Itoa(occurrence))).String(),
		Date:          date,
		MemberID:      memberID,
		GroupName:     group,
		Amount:        r.get(ColPaymentAmount),
		Status:        status,
		AttachmentRef: r.get(ColPaymentAttachment),
		WeekLabel:     r.get(ColPaymentWeek),
	}, nil
}

// PaymentKey is the content identical payment rows share.
func (r Row) PaymentKey() string {
	return strings.Join([]string{
		r.get(ColPaymentDate),
		r.get(ColPaymentMember),
		r.get(ColPaymentGroup),
		r.get(ColPaymentAmount),
		r.get(ColPaymentAttachment),
		r.get(ColPaymentWeek),
	}, "\x1f")
}
