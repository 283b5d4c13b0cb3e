package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "text"

// Prometheus holds the training collectors.
type Prometheus struct {
	Epochs   prometheus.Counter
	Loss     *prometheus.GaugeVec
	Accuracy *prometheus.GaugeVec
	Duration prometheus.Histogram
	Samples  *prometheus.GaugeVec
	Features prometheus.Gauge
	Params   prometheus.Gauge
	Stopped  prometheus.Gauge
}

// NewPrometheusMetrics creates the collectors for the given run.
func NewPrometheusMetrics(run string) Prometheus {
	labels := prometheus.Labels{"run": run}
	return Prometheus{
		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "train",
			Name:        "epochs_total",
			Help:        "Number of completed training epochs.",
			ConstLabels: labels,
		}),
		Loss: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "train",
			Name:        "loss",
			Help:        "Cross entropy loss of the last epoch.",
			ConstLabels: labels,
		}, []string{"split"}),
		Accuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "train",
			Name:        "accuracy",
			Help:        "Accuracy of the last epoch.",
			ConstLabels: labels,
		}, []string{"split"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "train",
			Name:        "epoch_duration_seconds",
			Help:        "Duration of the training epochs.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		Samples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "data",
			Name:        "samples",
			Help:        "Number of samples per split.",
			ConstLabels: labels,
		}, []string{"split"}),
		Features: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "data",
			Name:        "features",
			Help:        "Number of selected features.",
			ConstLabels: labels,
		}),
		Params: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "model",
			Name:        "params",
			Help:        "Number of trainable parameters.",
			ConstLabels: labels,
		}),
		Stopped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "train",
			Name:        "early_stopped",
			Help:        "1 if training was stopped early.",
			ConstLabels: labels,
		}),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Epochs, p.Loss, p.Accuracy, p.Duration, p.Samples, p.Features, p.Params, p.Stopped}
}

// Metrics tracks the progress of a training run on its own registry.
type Metrics struct {
	mutex      *sync.RWMutex
	registry   *prometheus.Registry
	prometheus Prometheus
}

// New creates new metrics for the given run.
func New(run string) *Metrics {
	registry := prometheus.NewRegistry()
	p := NewPrometheusMetrics(run)
	registry.MustRegister(p.collectors()...)
	return &Metrics{
		mutex:      new(sync.RWMutex),
		registry:   registry,
		prometheus: p,
	}
}

// Registry returns the registry of the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Data records the size of the vectorized data.
func (m *Metrics) Data(train, validation, features, params int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.Samples.WithLabelValues("train").Set(float64(train))
	m.prometheus.Samples.WithLabelValues("validation").Set(float64(validation))
	m.prometheus.Features.Set(float64(features))
	m.prometheus.Params.Set(float64(params))
}

// Epoch records the outcome of a training epoch.
func (m *Metrics) Epoch(loss, accuracy, valLoss, valAccuracy float64, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.prometheus.Epochs.Inc()
	m.prometheus.Loss.WithLabelValues("train").Set(loss)
	m.prometheus.Loss.WithLabelValues("validation").Set(valLoss)
	m.prometheus.Accuracy.WithLabelValues("train").Set(accuracy)
	m.prometheus.Accuracy.WithLabelValues("validation").Set(valAccuracy)
	m.prometheus.Duration.Observe(duration.Seconds())
}

// Stop records whether training stopped before running all epochs.
func (m *Metrics) Stop(early bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if early {
		m.prometheus.Stopped.Set(1)
		return
	}
	m.prometheus.Stopped.Set(0)
}

// WriteTo writes the current state of the metrics to the given file
// in the text format of the node exporter textfile collector.
func (m *Metrics) WriteTo(file string) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if err := prometheus.WriteToTextfile(file, m.registry); err != nil {
		return fmt.Errorf("could not write metrics to '%s': %w", file, err)
	}
	return nil
}
