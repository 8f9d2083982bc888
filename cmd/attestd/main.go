// Attestation verifier daemon.
// Serves the read-only status API over persisted attestation results.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/trustgate/attest/internal/api"
	"github.com/trustgate/attest/internal/config"
	"github.com/trustgate/attest/internal/verifier"
	"github.com/trustgate/attest/internal/version"
	"github.com/trustgate/attest/pkg/audit"
	"github.com/trustgate/attest/pkg/pts"
	"github.com/trustgate/attest/pkg/store"
)

var (
	listenAddr = flag.String("listen", "", "HTTP listen address (overrides config)")
	dbPath     = flag.String("db", "", "Database path (default: ~/.local/share/attestd/attestd.db)")
	configPath = flag.String("config", "", "Path to YAML config file")
)

func main() {
	flag.CommandLine.SetOutput(os.Stdout)
	flag.Parse()

	log.Printf("attestd v%s starting...", version.Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	path := cfg.DBPath
	if path == "" {
		path = store.DefaultPath()
	}

	db, err := store.Open(path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(cfg.SelfCheckPaths) > 0 {
		runSelfCheck(cfg, db, logger)
	}

	server := api.NewServer(db, logger)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("Shutting down...")
		httpServer.Close()
	}()

	log.Printf("HTTP server listening on %s", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}

	log.Println("attestd stopped")
}

// runSelfCheck measures the configured paths on the daemon's own host
// and records the baseline outcome under the "local" endpoint. There
// are no reference values to compare against; a measurement only fails
// when the path cannot be read.
func runSelfCheck(cfg *config.Config, db *store.Store, logger *slog.Logger) {
	emitter := audit.NewMultiEmitter(logger,
		audit.NewLogEmitter(logger), audit.NewStoreSink(db))

	sess := verifier.NewSession(0, "local",
		verifier.WithPlatformInfo(cfg.PlatformInfo),
		verifier.WithResultStore(db),
		verifier.WithAuditEmitter(emitter),
		verifier.WithLogger(logger))
	defer sess.Close()

	engine := sess.State().Engine()
	for i, path := range cfg.SelfCheckPaths {
		fi, err := os.Stat(path)
		if err != nil {
			logger.Warn("self-check path unreadable", "path", path, "error", err)
			continue
		}

		id, err := sess.RequestFileMeasurement(i, fi.IsDir())
		if err != nil {
			logger.Error("self-check request failed", "path", path, "error", err)
			return
		}

		if fi.IsDir() {
			_, err = engine.MeasureDirectory(path)
			sess.HandleFileMeasurement(id, nil, err == nil)
		} else {
			var m *pts.Measurement
			m, err = engine.MeasureFile(path)
			sess.HandleFileMeasurement(id, m, err == nil)
		}
		if err != nil {
			logger.Warn("self-check measurement failed", "path", path, "error", err)
		}
	}

	d, err := sess.Finalize(cfg.PreferredLanguages)
	if err != nil {
		logger.Error("self-check finalize failed", "error", err)
		return
	}
	logger.Info("startup self-check complete",
		"recommendation", d.Recommendation.String(), "evaluation", d.Evaluation.String())
}
