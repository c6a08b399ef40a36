package parser

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unalkalkan/bookreader/pkg/types"
)

const (
	metricsNamespace = "bookreader"
	labelFormat      = "format"
	labelResult      = "result"
)

// Metrics records parser activity. A nil *Metrics records nothing.
type Metrics struct {
	parses       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewMetrics registers the parser collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		parses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "parses_total",
				Help:      "Book files parsed, by format and result",
			},
			[]string{labelFormat, labelResult},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "parse_duration_seconds",
				Help:      "Time spent extracting chapters from a book file",
				Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
			},
			[]string{labelFormat},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "content_cache_lookups_total",
				Help:      "Content cache lookups, by result",
			},
			[]string{labelResult},
		),
	}
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) parsed(format types.Format, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.parses.WithLabelValues(string(format), resultLabel(err)).Inc()
	m.duration.WithLabelValues(string(format)).Observe(elapsed.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmpty):
		return "empty"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported"
	default:
		return "corrupt"
	}
}
