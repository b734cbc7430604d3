package main

import (
	"expvar"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"net/http/pprof"
	"slices"

	"github.com/ketiboldiais/amicus/pkg/rune"
)

// setupDebugHandlers serves the engine counters, expvar and pprof on addr
// for profiling long scripts.
func setupDebugHandlers(addr string) error {
	m := http.NewServeMux()
	m.HandleFunc("/debug/rune", serveEngineStats)
	m.Handle("/debug/vars", expvar.Handler())
	m.HandleFunc("/debug/pprof/", pprof.Index)
	m.HandleFunc("/debug/pprof/profile", pprof.Profile)
	m.HandleFunc("/debug/pprof/trace", pprof.Trace)
	m.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("debug listener: %w", err)
	}
	slog.Info("debug handlers listening", "debugAddr", l.Addr().String())
	go http.Serve(l, m) //nolint:errcheck
	return nil
}

// serveEngineStats writes one "name value" line per engine counter, sorted
// by name.
func serveEngineStats(w http.ResponseWriter, _ *http.Request) {
	stats := rune.Stats()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, name := range slices.Sorted(maps.Keys(stats)) {
		fmt.Fprintf(w, "%s %d\n", name, stats[name])
	}
}
