// Package profiling exposes the pprof endpoints on a loopback port.
package profiling

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
)

const (
	defaultPort       = "6060"
	readHeaderTimeout = 5 * time.Second
)

// Enabled reports whether ENABLE_PROFILING=true.
func Enabled() bool {
	return os.Getenv("ENABLE_PROFILING") == "true"
}

// Addr returns the loopback address for the pprof server, from PPROF_PORT.
func Addr() string {
	port := os.Getenv("PPROF_PORT")
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort("localhost", port)
}

// Mux returns a mux serving the standard /debug/pprof endpoints.
func Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// StartPprofServer serves pprof in the background when profiling is enabled.
// It binds to localhost only.
func StartPprofServer(log logger.Logger) {
	if !Enabled() {
		return
	}
	addr := Addr()
	srv := &http.Server{Addr: addr, Handler: Mux(), ReadHeaderTimeout: readHeaderTimeout}

	go func() {
		log.Info("Starting pprof server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("pprof server error", logger.Error(err))
		}
	}()
}
