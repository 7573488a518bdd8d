package sheetclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/andymarkow/pandero/internal/httpclient"
)

// Tabs of the spreadsheet export.
const (
	TabUsers       = "usuarios"
	TabGroups      = "grupos"
	TabMemberships = "miembros"
	TabPayments    = "pagos"
)

var (
	ErrTabNotFound        = errors.New("tab not found")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrSomethingWentWrong = errors.New("something went wrong")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
)

// Row is one spreadsheet row keyed by column header. Every cell is kept as
// text, numbers included.
type Row map[string]string

type SheetClient struct {
	log    *slog.Logger
	client *resty.Client
}

func New(opts ...Option) *SheetClient {
	sheetClient := &SheetClient{
		log:    slog.Default(),
		client: httpclient.New(),
	}

	for _, opt := range opts {
		opt(sheetClient)
	}

	return sheetClient
}

type Option func(c *SheetClient)

func WithLogger(logger *slog.Logger) Option {
	return func(c *SheetClient) {
		c.log = logger
	}
}

func WithClient(client *resty.Client) Option {
	return func(c *SheetClient) {
		c.client = client
	}
}

// GetRows fetches every row of a tab.
func (c *SheetClient) GetRows(ctx context.Context, tab string) ([]Row, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParams(map[string]string{
			"tab": tab,
		}).
		Get("/{tab}")
	if err != nil {
		return nil, fmt.Errorf("client.R: %w", err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTabNotFound, tab)
	case code == http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	case code >= http.StatusInternalServerError:
		return nil, ErrSomethingWentWrong
	case code != http.StatusOK:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}

	rows, err := decodeRows(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decodeRows: %w", err)
	}

	c.log.Debug("Fetched sheet rows", slog.String("tab", tab), slog.Int("rows", len(rows)))

	return rows, nil
}

func decodeRows(body []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw []map[string]any

	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("dec.Decode: %w", err)
	}

	rows := make([]Row, 0, len(raw))

	for _, obj := range raw {
		row := make(Row, len(obj))

		for k, v := range obj {
			row[k] = cellText(v)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
