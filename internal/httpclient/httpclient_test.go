package httpclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(errors.New("boom")))
	assert.True(t, isRetryableError(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, isRetryableError(&net.DNSError{Err: "no such host", Name: "sheets.local"}))
	assert.True(t, isRetryableError(&net.OpError{Op: "dial", Err: errors.New("reset")}))
}

func TestIsRetryableStatus(t *testing.T) {
	assert.False(t, isRetryableStatus(nil))

	for code, want := range map[int]bool{
		http.StatusOK:                  false,
		http.StatusTooManyRequests:     false,
		http.StatusInternalServerError: false,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	} {
		resp := &resty.Response{RawResponse: &http.Response{StatusCode: code}}
		assert.Equal(t, want, isRetryableStatus(resp), code)
	}
}
