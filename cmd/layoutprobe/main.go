package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgallion1/layoutprobe/internal/api"
	"github.com/dgallion1/layoutprobe/internal/config"
	"github.com/dgallion1/layoutprobe/internal/docintel"
	"github.com/dgallion1/layoutprobe/internal/harness"
	"github.com/dgallion1/layoutprobe/internal/preflight"
	"github.com/dgallion1/layoutprobe/internal/results"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	serve := flag.Bool("serve", false, "run as an HTTP service instead of a one-shot batch")
	format := flag.String("format", "", "requested output content format (default, text, markdown, html)")
	resultsDir := flag.String("results", "", "directory for content and report files")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.pdf [file2.docx ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg := config.Load()
	if *format != "" {
		cfg.OutputFormat = *format
	}
	if *resultsDir != "" {
		cfg.ResultsDir = *resultsDir
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *serve {
		if err := cfg.ValidateServe(); err != nil {
			log.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
	} else if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := docintel.NewClient(cfg.Endpoint, cfg.Key, cfg.APIVersion, cfg.PollInterval)
	sink := results.NewSink(cfg.ResultsDir)
	runner := harness.NewRunner(cfg, client, sink, log)
	runner.Start(ctx)

	if *serve {
		runServer(ctx, runner, client, log, cfg)
		return
	}

	ok := runBatch(runner, log, cfg, flag.Args())
	runner.Stop()
	client.Close()
	if !ok {
		os.Exit(1)
	}
}

// runBatch submits each file and waits for all jobs to finish. Returns
// false when no document produced results.
func runBatch(runner *harness.Runner, log *slog.Logger, cfg config.Config, paths []string) bool {
	var jobs []*harness.Job
	for _, path := range paths {
		filename := filepath.Base(path)
		if !preflight.IsSupportedExtension(filename) {
			log.Warn("unsupported file type, skipping", "file", path)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("document not readable, skipping", "file", path, "error", err)
			continue
		}
		if int64(len(data)) > cfg.MaxUploadBytes {
			log.Warn("document exceeds max size, skipping", "file", path, "size", len(data))
			continue
		}

		job := &harness.Job{Filename: filename}
		job.SetFileData(data)
		if err := runner.Submit(job); err != nil {
			log.Error("submit failed", "file", path, "error", err)
			continue
		}
		log.Info("submitted", "file", path, "job_id", job.ID, "format", job.RequestedFormat)
		jobs = append(jobs, job)
	}

	if len(jobs) == 0 {
		log.Error("no documents submitted")
		return false
	}

	// Wait for every job to reach a terminal state.
	for {
		done := 0
		for _, job := range jobs {
			if job.Snapshot().Status.Terminal() {
				done++
			}
		}
		if done == len(jobs) {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}

	completed := 0
	for _, job := range jobs {
		snap := job.Snapshot()
		if snap.Status == harness.StatusCompleted {
			completed++
			log.Info("analysis completed",
				"file", snap.Filename,
				"detected_format", snap.DetectedFormat,
				"content", snap.ContentPath,
				"report", snap.ReportPath,
			)
		} else {
			log.Error("analysis failed", "file", snap.Filename, "errors", snap.Errors)
		}
	}

	log.Info("batch finished", "completed", completed, "total", len(jobs), "results_dir", cfg.ResultsDir)
	return completed > 0
}

func runServer(ctx context.Context, runner *harness.Runner, client *docintel.Client, log *slog.Logger, cfg config.Config) {
	srv := api.NewServer(runner, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		log.Info("shutting down...")

		// Stop accepting requests before closing the job queue so no
		// in-flight submit races the queue shutdown.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		runner.Stop()
		client.Close()
	}()

	log.Info("starting layoutprobe", "port", cfg.Port, "model", cfg.ModelID)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
