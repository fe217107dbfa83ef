package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResumeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_runs_total",
		Help: "The total number of resume pipeline runs",
	}, []string{"strategy", "status"})

	ResumeStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_stage_duration_seconds",
		Help:    "Duration of each resume pipeline stage",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"stage"})

	ResumeInputArticles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_input_articles",
		Help:    "Number of articles left after filtering",
		Buckets: []float64{1, 5, 10, 20, 40, 80, 160},
	})

	ResumeSelectedArticles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resume_selected_articles",
		Help:    "Number of articles handed to the summarizer",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
	})

	ResumeSelectionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_selection_calls_total",
		Help: "Importance selection calls by phase and status",
	}, []string{"phase", "status"})

	ResumeEscalationRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_escalation_rounds_total",
		Help: "Fallback escalation rounds executed",
	}, []string{"round"})

	ResumeFloorMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resume_floor_misses_total",
		Help: "Runs that finished escalation below the article floor",
	})

	ResumeDownselectFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resume_downselect_fallbacks_total",
		Help: "Downselect passes replaced by the deterministic first-N fallback",
	})

	// LLM token usage metrics
	LLMTokensPrompt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_llm_tokens_prompt_total",
		Help: "Total prompt tokens sent to LLM providers",
	}, []string{"provider", "model", "task"})

	LLMTokensCompletion = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_llm_tokens_completion_total",
		Help: "Total completion tokens received from LLM providers",
	}, []string{"provider", "model", "task"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_llm_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"provider", "model", "task", "status"})

	LLMRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_llm_retries_total",
		Help: "Total number of LLM call retries",
	}, []string{"provider", "task"})

	LLMCircuitBreakerOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_llm_circuit_breaker_opens_total",
		Help: "Total number of times LLM circuit breaker opened",
	}, []string{"provider"})

	// LLM latency by provider and task
	LLMRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_llm_request_latency_seconds",
		Help:    "Latency of LLM requests by provider and task",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
	}, []string{"provider", "model", "task"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_http_requests_total",
		Help: "API requests by route and status code",
	}, []string{"route", "code"})
)
