package sheetclient_test

import (
	"testing"
	"time"

	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/domain/users"
	"github.com/andymarkow/pandero/internal/sheets/sheetclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowUser(t *testing.T) {
	usr, err := sheetclient.Row{"Nombre": "Rosa", "DNI": "45678912", "Celular": ""}.User()
	require.NoError(t, err)
	assert.Equal(t, "45678912", usr.ID)

	_, err = sheetclient.Row{"Nombre": "Rosa"}.User()
	assert.ErrorIs(t, err, users.ErrUserIDEmpty)
}

func TestRowGroupKeepsTextVerbatim(t *testing.T) {
	grp, err := sheetclient.Row{
		"NombreGrupo":     "Amigos",
		"FechaInicio":     "01/02/2024",
		"SemanasDuracion": "veinte",
		"MontoBase":       "400",
	}.Group()
	require.NoError(t, err)

	assert.Equal(t, "01/02/2024", grp.StartDate)
	assert.Equal(t, "veinte", grp.DurationWeeks)
	assert.Empty(t, grp.PremiumAmount)

	_, err = sheetclient.Row{"FechaInicio": "2024-01-01"}.Group()
	assert.ErrorIs(t, err, sheetclient.ErrRowKeyMissing)
}

func TestRowMembership(t *testing.T) {
	m, err := sheetclient.Row{"NombreGrupo": "Amigos", "DNI_Usuario": "1", "Turno": "3.0", "Tipo": "Medio"}.Membership()
	require.NoError(t, err)
	assert.Equal(t, members.ShareHalf, m.Share)
	assert.Equal(t, "3.0", m.Turn)

	m, err = sheetclient.Row{"NombreGrupo": "Amigos", "DNI_Usuario": "1", "Tipo": "Tercio"}.Membership()
	require.NoError(t, err)
	assert.Equal(t, members.ShareFull, m.Share)

	_, err = sheetclient.Row{"NombreGrupo": "Amigos"}.Membership()
	assert.ErrorIs(t, err, sheetclient.ErrRowKeyMissing)
}

func TestRowPayment(t *testing.T) {
	row := sheetclient.Row{
		"Fecha":        "2024-01-09 10:30:00",
		"DNI":          "1",
		"Grupo":        "Amigos",
		"Monto":        "400.0",
		"Estado":       "Pendiente",
		"Foto":         "Pendiente_Storage",
		"SemanaPagada": "Varias",
	}

	pmt, err := row.Payment(0)
	require.NoError(t, err)

	assert.Equal(t, payments.StatusPending, pmt.Status)
	assert.Equal(t, "400.0", pmt.Amount)
	assert.Equal(t, 9, pmt.Date.Day())
	assert.Equal(t, time.January, pmt.Date.Month())

	again, err := row.Payment(0)
	require.NoError(t, err)
	assert.Equal(t, pmt.ID, again.ID)

	second, err := row.Payment(1)
	require.NoError(t, err)
	assert.NotEqual(t, pmt.ID, second.ID)

	approved := sheetclient.Row{}
	for k, v := range row {
		approved[k] = v
	}

	approved["Estado"] = "Aprobado"

	reviewed, err := approved.Payment(0)
	require.NoError(t, err)
	assert.Equal(t, pmt.ID, reviewed.ID)
	assert.Equal(t, payments.StatusApproved, reviewed.Status)

	unknown := sheetclient.Row{"Fecha": "2024-01-09", "DNI": "1", "Grupo": "Amigos", "Estado": "Anulado"}
	pmt, err = unknown.Payment(0)
	require.NoError(t, err)
	assert.Equal(t, payments.Status("Anulado"), pmt.Status)

	_, err = sheetclient.Row{"Fecha": "ayer", "DNI": "1", "Grupo": "Amigos"}.Payment(0)
	assert.ErrorIs(t, err, sheetclient.ErrRowDate)
}
