package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddr(t *testing.T) {
	t.Setenv("PPROF_PORT", "")
	assert.Equal(t, "localhost:6060", Addr())

	t.Setenv("PPROF_PORT", "7070")
	assert.Equal(t, "localhost:7070", Addr())
}

func TestEnabled(t *testing.T) {
	t.Setenv("ENABLE_PROFILING", "false")
	assert.False(t, Enabled())

	t.Setenv("ENABLE_PROFILING", "true")
	assert.True(t, Enabled())
}

func TestMuxServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
