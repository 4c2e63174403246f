package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LLMCalls          atomic.Int64
	LLMErrors         atomic.Int64
	LLMLatencyMs      atomic.Int64
	Retries           atomic.Int64
	RateLimited       atomic.Int64
	ParseFailures     atomic.Int64
	JobSearchRequests atomic.Int64
	JobStoreReads     atomic.Int64
	ResumeAnalyses    atomic.Int64
	InterviewSessions atomic.Int64
	RoadmapRequests   atomic.Int64
	ReportExports     atomic.Int64
	QueueJobs         atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"llm_calls", "llm_errors", "llm_latency_ms_total",
	"retries", "rate_limited", "parse_failures",
	"job_search_requests", "job_store_reads",
	"resume_analyses", "interview_sessions", "roadmap_requests",
	"report_exports", "queue_jobs",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"llm_latency_ms_total": metrics.LLMLatencyMs.Load(),
		"retries":              metrics.Retries.Load(),
		"rate_limited":         metrics.RateLimited.Load(),
		"parse_failures":       metrics.ParseFailures.Load(),
		"job_search_requests":  metrics.JobSearchRequests.Load(),
		"job_store_reads":      metrics.JobStoreReads.Load(),
		"resume_analyses":      metrics.ResumeAnalyses.Load(),
		"interview_sessions":   metrics.InterviewSessions.Load(),
		"roadmap_requests":     metrics.RoadmapRequests.Load(),
		"report_exports":       metrics.ReportExports.Load(),
		"queue_jobs":           metrics.QueueJobs.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the career sub-package.
func IncrJobSearchRequests() { metrics.JobSearchRequests.Add(1) }
func IncrJobStoreReads()     { metrics.JobStoreReads.Add(1) }
func IncrResumeAnalyses()    { metrics.ResumeAnalyses.Add(1) }
func IncrInterviewSessions() { metrics.InterviewSessions.Add(1) }
func IncrRoadmapRequests()   { metrics.RoadmapRequests.Add(1) }
func IncrReportExports()     { metrics.ReportExports.Add(1) }
func IncrQueueJobs()         { metrics.QueueJobs.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
