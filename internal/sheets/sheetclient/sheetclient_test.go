package sheetclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andymarkow/pandero/internal/httpclient"
	"github.com/andymarkow/pandero/internal/logger"
	"github.com/andymarkow/pandero/internal/sheets/sheetclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *sheetclient.SheetClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return sheetclient.New(
		sheetclient.WithLogger(logger.Discard()),
		sheetclient.WithClient(httpclient.New(
			httpclient.WithBaseURL(srv.URL),
			httpclient.WithRetryCount(0),
		)),
	)
}

func TestGetRows(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/grupos", r.URL.Path)

		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`[
			{"NombreGrupo": "Amigos", "FechaInicio": "2024-01-01 00:00:00", "SemanasDuracion": 25.0, "MontoBase": 400, "MontoInteres": null},
			{"NombreGrupo": "Vecinos", "SemanasDuracion": "veinte", "Activo": true}
		]`)) //nolint:errcheck
	})

	rows, err := client.GetRows(context.Background(), sheetclient.TabGroups)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, sheetclient.Row{
		"NombreGrupo":     "Amigos",
		"FechaInicio":     "2024-01-01 00:00:00",
		"SemanasDuracion": "25.0",
		"MontoBase":       "400",
		"MontoInteres":    "",
	}, rows[0])
	assert.Equal(t, "veinte", rows[1]["SemanasDuracion"])
	assert.Equal(t, "true", rows[1]["Activo"])
}

func TestGetRowsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"missing tab", http.StatusNotFound, "", sheetclient.ErrTabNotFound},
		{"rate limited", http.StatusTooManyRequests, "", sheetclient.ErrTooManyRequests},
		{"server error", http.StatusInternalServerError, "", sheetclient.ErrSomethingWentWrong},
		{"unexpected", http.StatusForbidden, "", sheetclient.ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.GetRows(context.Background(), sheetclient.TabUsers)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("not an array", func(t *testing.T) {
		client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"error": "nope"}`)) //nolint:errcheck
		})

		_, err := client.GetRows(context.Background(), sheetclient.TabUsers)
		assert.Error(t, err)
	})
}
