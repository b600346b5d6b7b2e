package exporter

import (
	"context"
	"fmt"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scitags/rdma-res-go/types"
)

// Metric labels (note these are **always** strings):
//
//	kind: resource kind (pd, mr, cq, cm_id, qp)
//	dev: RDMA device name
//	reason: why entries were left out
type metrics struct {
	Resources  *prometheus.GaugeVec
	Skipped    *prometheus.CounterVec
	PollErrors *prometheus.CounterVec
	Polls      prometheus.Counter
}

func newMetrics() *metrics {
	return &metrics{
		Resources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rdma_res_resources",
			Help: "Resources currently tracked by the kernel",
		}, []string{"kind", "dev"}),

		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdma_res_skipped_total",
			Help: "Resource entries left out of the reports",
		}, []string{"kind", "reason"}),

		PollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rdma_res_poll_errors_total",
			Help: "Failed resource polls",
		}, []string{"kind"}),

		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rdma_res_polls_total",
			Help: "Resource polls carried out",
		}),
	}
}

// (Nastily) use reflection to avoid having to manually register everything.
func (m *metrics) register(req prometheus.Registerer) error {
	v := reflect.ValueOf(*m)

	i := 0
	for i = 0; i < v.NumField(); i++ {
		vv, ok := v.Field(i).Interface().(prometheus.Collector)
		if !ok {
			return fmt.Errorf("error casting the interface for index %d", i)
		}
		if err := req.Register(vv); err != nil {
			return fmt.Errorf("error registering index %d: %w", i, err)
		}
	}
	logger.Log(context.Background(), types.LevelTrace, "registered collectors", "i", i)

	return nil
}

// update replaces the resource counts of kind.
func (m *metrics) update(kind types.Kind, counts map[string]int, skipped map[string]uint64) {
	m.Resources.DeletePartialMatch(prometheus.Labels{"kind": kind.String()})
	for dev, n := range counts {
		m.Resources.WithLabelValues(kind.String(), dev).Set(float64(n))
	}

	for reason, n := range skipped {
		m.Skipped.WithLabelValues(kind.String(), reason).Add(float64(n))
	}
}
