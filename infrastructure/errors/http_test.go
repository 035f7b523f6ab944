package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/Hosseinjeff/Wholesale-project/infrastructure/errors"
)

func response(code int, body string) *http.Response {
	u, _ := url.Parse("https://t.me/s/shop")
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    &http.Request{URL: u},
	}
}

func TestCheckResponse(t *testing.T) {
	assert.NoError(t, infraerrors.CheckResponse(response(http.StatusOK, "ok")))

	err := infraerrors.CheckResponse(response(http.StatusBadGateway, " upstream down \n"))
	require.Error(t, err)
	assert.Equal(t, "https://t.me/s/shop returned 502: upstream down", err.Error())
	assert.True(t, infraerrors.IsTemporary(err))

	code, ok := infraerrors.StatusCode(fmt.Errorf("fetch: %w", err))
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestTemporary(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		err := infraerrors.CheckResponse(response(tt.code, ""))
		assert.Equal(t, tt.want, infraerrors.IsTemporary(err), tt.code)
	}
	assert.False(t, infraerrors.IsTemporary(fmt.Errorf("plain")))
}
