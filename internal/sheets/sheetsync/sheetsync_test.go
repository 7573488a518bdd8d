package sheetsync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/logger"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/andymarkow/pandero/internal/sheets/sheetclient"
	"github.com/andymarkow/pandero/internal/sheets/sheetsync"
	"github.com/andymarkow/pandero/internal/storage/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("unavailable")

type fakeSource map[string][]sheetclient.Row

func (f fakeSource) GetRows(_ context.Context, tab string) ([]sheetclient.Row, error) {
	rows, ok := f[tab]
	if !ok {
		return nil, errUnavailable
	}

	return rows, nil
}

func sheet() fakeSource {
	return fakeSource{
		sheetclient.TabUsers: {
			{"Nombre": "Rosa", "DNI": "1"},
			{"Nombre": "Luis", "DNI": "2"},
			{"Nombre": "Sin DNI"},
		},
		sheetclient.TabGroups: {
			{"NombreGrupo": "Amigos", "FechaInicio": "2024-01-01", "SemanasDuracion": "4.0", "MontoBase": "100", "MontoInteres": "150"},
		},
		sheetclient.TabMemberships: {
			{"NombreGrupo": "Amigos", "DNI_Usuario": "1", "Turno": "2", "Tipo": "Completo"},
			{"NombreGrupo": "Amigos", "DNI_Usuario": "2", "Turno": "1", "Tipo": "Medio"},
		},
		sheetclient.TabPayments: {
			{"Fecha": "2024-01-02", "DNI": "1", "Grupo": "Amigos", "Monto": "100", "Estado": "Aprobado"},
			{"Fecha": "2024-01-02", "DNI": "1", "Grupo": "Amigos", "Monto": "100", "Estado": "Aprobado"},
			{"Fecha": "2024-01-03", "DNI": "2", "Grupo": "Amigos", "Monto": "50", "Estado": "Pendiente"},
			{"Fecha": "", "DNI": "2", "Grupo": "Amigos", "Monto": "50"},
		},
	}
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()

	syncer := sheetsync.New(store, sheet(), sheetsync.WithLogger(logger.Discard()), sheetsync.WithPoolSize(3))

	reports, err := syncer.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, sheetsync.Report{Imported: 2, Skipped: 1}, reports[sheetclient.TabUsers])
	assert.Equal(t, sheetsync.Report{Imported: 1}, reports[sheetclient.TabGroups])
	assert.Equal(t, sheetsync.Report{Imported: 2}, reports[sheetclient.TabMemberships])
	assert.Equal(t, sheetsync.Report{Imported: 3, Skipped: 1}, reports[sheetclient.TabPayments])

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Payments, 3)

	// The identical rows are two distinct payments.
	pmts, err := store.GetPaymentsByMember(ctx, "1")
	require.NoError(t, err)
	require.Len(t, pmts, 2)
	assert.NotEqual(t, pmts[0].ID, pmts[1].ID)

	sched := schedule.Compute("1", snap.Payments[0].Date.AddDate(0, 0, 1), snap)
	assert.Equal(t, schedule.OutcomeResolved, sched.Outcome)
	assert.Equal(t, schedule.StateSettled, sched.Weeks[1].State)
}

func TestSyncIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()

	syncer := sheetsync.New(store, sheet(), sheetsync.WithLogger(logger.Discard()))

	_, err := syncer.Sync(ctx)
	require.NoError(t, err)

	reports, err := syncer.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, sheetsync.Report{Existing: 2, Skipped: 1}, reports[sheetclient.TabUsers])
	assert.Equal(t, sheetsync.Report{Existing: 3, Skipped: 1}, reports[sheetclient.TabPayments])

	usrs, err := store.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, usrs, 2)
}

func TestSyncKeepsStoredStatus(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()

	src := sheet()

	_, err := sheetsync.New(store, src, sheetsync.WithLogger(logger.Discard())).Sync(ctx)
	require.NoError(t, err)

	src[sheetclient.TabPayments][2]["Estado"] = "Aprobado"

	reports, err := sheetsync.New(store, src, sheetsync.WithLogger(logger.Discard())).Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, sheetsync.Report{Existing: 3, Skipped: 1}, reports[sheetclient.TabPayments])

	pmts, err := store.GetPaymentsByMember(ctx, "2")
	require.NoError(t, err)
	require.Len(t, pmts, 1)
	assert.Equal(t, payments.StatusPending, pmts[0].Status)
}

func TestSyncContinuesAfterTabError(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()

	src := sheet()
	delete(src, sheetclient.TabGroups)

	reports, err := sheetsync.New(store, src, sheetsync.WithLogger(logger.Discard())).Sync(ctx)
	require.ErrorIs(t, err, errUnavailable)

	assert.NotContains(t, reports, sheetclient.TabGroups)
	assert.Equal(t, 2, reports[sheetclient.TabMemberships].Imported)
}
