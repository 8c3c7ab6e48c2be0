package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/layoutprobe/internal/config"
	"github.com/dgallion1/layoutprobe/internal/docintel"
	"github.com/dgallion1/layoutprobe/internal/formatcheck"
	"github.com/dgallion1/layoutprobe/internal/preflight"
	"github.com/dgallion1/layoutprobe/internal/report"
	"github.com/dgallion1/layoutprobe/internal/results"
)

// Worker processes a single document job end to end: preflight, analyze,
// detect, report, save.
type Worker struct {
	client *docintel.Client
	sink   *results.Sink
	stats  *AnalyzeStats
	log    *slog.Logger
	cfg    config.Config
}

func NewWorker(client *docintel.Client, sink *results.Sink, stats *AnalyzeStats, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		client: client,
		sink:   sink,
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
}

// Process runs the full analysis flow for a job. A failure at any step
// marks this job failed and leaves the rest of the batch untouched.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	data := job.FileData()
	if len(data) == 0 {
		log.Error("no file data")
		job.AddError("no file data")
		job.SetStatus(StatusFailed, "preflight")
		return
	}

	// Phase 1: local preflight.
	var pf *preflight.Summary
	if w.cfg.Preflight {
		job.SetStatus(StatusPreflight, "preflight")
		summary := preflight.Run(job.Filename, data)
		pf = &summary
		for _, warning := range summary.Warnings {
			log.Warn("preflight warning", "warning", warning)
		}
		log.Info("preflight complete",
			"format", summary.Format,
			"pages", summary.Pages,
			"chars", summary.Chars,
		)
	}

	// Phase 2: analyze with bounded retries on transient failures.
	job.SetStatus(StatusUploading, "uploading")
	opts := docintel.AnalyzeOptions{
		Model:        w.cfg.ModelID,
		OutputFormat: job.RequestedFormat,
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, w.cfg.AnalyzeTimeout)
	defer cancel()

	var result *docintel.Result
	var lastErr error
	started := time.Now()
	for attempt := range MaxRetries {
		job.SetStatus(StatusPolling, "polling")
		result, lastErr = w.client.Analyze(analyzeCtx, data, opts)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		if attempt == MaxRetries-1 {
			// No attempt left; fail now instead of sleeping.
			break
		}
		log.Warn("retryable analyze error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-analyzeCtx.Done():
			lastErr = analyzeCtx.Err()
		}
		if analyzeCtx.Err() != nil {
			break
		}
	}
	w.stats.Record(time.Since(started).Milliseconds())

	if lastErr != nil {
		log.Error("analysis failed", "error", lastErr)
		job.AddError(fmt.Sprintf("analyze: %s", lastErr))
		job.SetStatus(StatusFailed, "polling")
		return
	}
	if result.FellBack {
		log.Warn("outputContentFormat rejected, used default parameters")
	}

	// Phase 3: guess the content format and verify the guess.
	job.SetStatus(StatusDetecting, "detecting")
	detection := formatcheck.Detect(result.Content)
	verification := formatcheck.Verify(result.Content, detection.Format)
	log.Info("analysis complete",
		"requested_format", job.RequestedFormat,
		"detected_format", detection.Describe(),
		"content_format", result.ContentFormat,
		"chars", len(result.Content),
		"pages", result.Pages,
	)

	// Phase 4: report and save.
	job.SetStatus(StatusSaving, "saving")
	rep := report.Build(report.Params{
		File:            job.Filename,
		RequestedFormat: job.RequestedFormat,
		Detection:       detection,
		Verification:    verification,
		Content:         result.Content,
		GeneratedAt:     time.Now(),
		Preflight:       pf,
		ServicePages:    result.Pages,
		ServiceModel:    result.ModelID,
		FellBack:        result.FellBack,
	})

	contentPath, reportPath, err := w.sink.Save(job.Filename, job.RequestedFormat, result.Content, rep)
	if err != nil {
		log.Error("save failed", "error", err)
		job.AddError(fmt.Sprintf("save: %s", err))
		job.SetStatus(StatusFailed, "saving")
		return
	}

	job.SetResult(detection.Describe(), len([]rune(result.Content)), contentPath, reportPath, result.FellBack)
	job.SetStatus(StatusCompleted, "done")
	log.Info("results saved", "content", contentPath, "report", reportPath)
}
