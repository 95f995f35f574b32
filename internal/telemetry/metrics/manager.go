package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterFramesAnalyzed      *prometheus.CounterVec
	CounterRepsCounted         *prometheus.CounterVec
	CounterFramesNoPerson      prometheus.Counter
	CounterFramesLowConfidence prometheus.Counter
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeLifeSignal     prometheus.Gauge
	GaugeActiveSessions prometheus.Gauge

	// histograms
	HistFrameAnalysisDuration prometheus.Histogram
	HistogramRequestDuration  *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fitcoach", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitcoach", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterFramesAnalyzed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_analyzed",
		Help:      "The total number of analyzed workout frames",
	}, []string{"mode"})
	counterRepsCounted := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reps_counted",
		Help:      "The total number of counted repetitions",
	}, []string{"mode"})
	counterFramesNoPerson := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_no_person",
		Help:      "The total number of frames with no person detected",
	})
	counterFramesLowConfidence := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "frames_low_confidence",
		Help:      "The total number of frames dropped for low keypoint confidence",
	})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeActiveSessions := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "active_sessions",
		Help:      "Current number of live workout sessions",
	})

	histFrameAnalysisDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			Name:      "frame_analysis_duration_seconds",
			Help:      "Total duration of a single frame analysis in seconds",
		},
	)

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterFramesAnalyzed:      counterFramesAnalyzed,
		CounterRepsCounted:         counterRepsCounted,
		CounterFramesNoPerson:      counterFramesNoPerson,
		CounterFramesLowConfidence: counterFramesLowConfidence,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		GaugeRequests:              gaugeRequests,
		GaugeLifeSignal:            gaugeLifeSignal,
		GaugeActiveSessions:        gaugeActiveSessions,
		HistFrameAnalysisDuration:  histFrameAnalysisDuration,
		HistogramRequestDuration:   histogramRequestDuration,
	}
}
