package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by the result counters.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

type Manager struct {
	// counters
	CounterSessions     *prometheus.CounterVec
	CounterFitnessPts   prometheus.Counter
	CounterPrestige     prometheus.Counter
	CounterPRs          prometheus.Counter
	CounterLevelUps     *prometheus.CounterVec
	CounterGrace        *prometheus.CounterVec
	CounterSaves        *prometheus.CounterVec
	CounterReplications *prometheus.CounterVec
	CounterSuperseded   prometheus.Counter
	CounterRequests     *prometheus.CounterVec

	// gauges
	GaugeFitnessLevel prometheus.Gauge
	GaugeStreak       prometheus.Gauge

	// histograms
	HistSaveDuration        prometheus.Histogram
	HistReplicationDuration prometheus.Histogram
	HistRequestDuration     prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("lifehub", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("lifehub", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterSessions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sessions",
		Help:      "The total number of processed workout sessions",
	}, []string{"completion", "luteal"})
	counterFitnessPts := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "fitness_points",
		Help:      "The total number of fitness points awarded",
	})
	counterPrestige := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "prestige",
		Help:      "The total amount of prestige currency awarded",
	})
	counterPRs := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "personal_records",
		Help:      "The total number of new personal records",
	})
	counterLevelUps := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "level_ups",
		Help:      "The total number of level ups per track",
	}, []string{"track"})
	counterGrace := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "grace",
		Help:      "Grace requests by outcome",
	}, []string{"outcome"})
	counterSaves := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "saves",
		Help:      "Local persistence attempts by result",
	}, []string{"result"})
	counterReplications := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "replications",
		Help:      "Remote replication attempts by result",
	}, []string{"result"})
	counterSuperseded := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "replications_superseded",
		Help:      "Snapshots replaced by a newer one before they were sent",
	})
	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})

	gaugeFitnessLevel := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "fitness_level",
		Help:      "Current global fitness level",
	})
	gaugeStreak := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "streak",
		Help:      "Current workout streak",
	})

	histSaveDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5, 1},
			Name:      "save_duration_seconds",
			Help:      "Duration of a local save in seconds",
		},
	)
	histReplicationDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			Name:      "replication_duration_seconds",
			Help:      "Duration of a replication including retries in seconds",
		},
	)
	histRequestDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 10},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		},
	)

	return &Manager{
		CounterSessions:         counterSessions,
		CounterFitnessPts:       counterFitnessPts,
		CounterPrestige:         counterPrestige,
		CounterPRs:              counterPRs,
		CounterLevelUps:         counterLevelUps,
		CounterGrace:            counterGrace,
		CounterSaves:            counterSaves,
		CounterReplications:     counterReplications,
		CounterSuperseded:       counterSuperseded,
		CounterRequests:         counterRequests,
		GaugeFitnessLevel:       gaugeFitnessLevel,
		GaugeStreak:             gaugeStreak,
		HistSaveDuration:        histSaveDuration,
		HistReplicationDuration: histReplicationDuration,
		HistRequestDuration:     histRequestDuration,
	}
}
