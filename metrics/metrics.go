// Package metrics exposes the coordinator's prometheus collectors. Each
// gauge/counter is registered eagerly and any registration error is
// aggregated via errs.Errs, mirroring the teacher's
// metrics.NewAveragerWithErrs pattern so callers can surface every
// registration failure from a single construction call instead of bailing
// out on the first one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/PsycheFoundation/psyche-coordinator-go/errs"
)

// Coordinator holds the collectors the round/epoch state machine updates on
// every Apply call.
type Coordinator struct {
	Epoch           prometheus.Gauge
	Step            prometheus.Gauge
	RoundHeight     prometheus.Gauge
	ActiveClients   prometheus.Gauge
	HealthyClients  prometheus.Gauge
	RejectedEvents  *prometheus.CounterVec
	EpochsFinished  prometheus.Counter
	ClientsSlashed  prometheus.Counter
	PointsEarned    prometheus.Counter
	Checkpoints     prometheus.Counter
}

// NewCoordinator constructs and registers the coordinator's collectors
// against reg. Any registration error is collected rather than returned
// immediately, so a caller can register every metric once and inspect the
// aggregate failure.
func NewCoordinator(reg prometheus.Registerer) (*Coordinator, error) {
	var e errs.Errs

	m := &Coordinator{
		Epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psyche_coordinator_epoch",
			Help: "Current epoch number.",
		}),
		Step: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psyche_coordinator_step",
			Help: "Current global training step.",
		}),
		RoundHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psyche_coordinator_round_height",
			Help: "Height of the current round within the epoch.",
		}),
		ActiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psyche_coordinator_active_clients",
			Help: "Number of clients active in the current epoch.",
		}),
		HealthyClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psyche_coordinator_healthy_clients",
			Help: "Number of clients marked Healthy in the current epoch.",
		}),
		RejectedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "psyche_coordinator_rejected_events_total",
			Help: "Count of events rejected by Apply, by CoordinatorError kind.",
		}, []string{"reason"}),
		EpochsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psyche_coordinator_epochs_finished_total",
			Help: "Count of epochs that completed Cooldown and advanced to a next epoch.",
		}),
		ClientsSlashed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psyche_coordinator_clients_slashed_total",
			Help: "Count of clients newly marked Dropped or Ejected when a round closes.",
		}),
		PointsEarned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psyche_coordinator_points_earned_total",
			Help: "Total earned points accrued across all clients.",
		}),
		Checkpoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "psyche_coordinator_checkpoints_total",
			Help: "Count of accepted epoch checkpoints.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Epoch, m.Step, m.RoundHeight, m.ActiveClients, m.HealthyClients,
		m.RejectedEvents, m.EpochsFinished, m.ClientsSlashed, m.PointsEarned, m.Checkpoints,
	} {
		e.Add(reg.Register(c))
	}

	if e.Errored() {
		return m, e.Err()
	}
	return m, nil
}
