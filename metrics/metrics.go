package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the survey server.
type Metrics struct {
	SurveysCreated prometheus.Counter
	BallotsCast    prometheus.Counter
	VotesCast      prometheus.Counter
	CaptchaFailed  *prometheus.CounterVec
	Registry       *prometheus.Registry
}

// New registers all collectors on a fresh registry so tests can build
// several servers in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		SurveysCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "survey_surveys_created_total",
			Help: "Total number of surveys created",
		}),
		BallotsCast: f.NewCounter(prometheus.CounterOpts{
			Name: "survey_ballots_total",
			Help: "Total number of accepted submit_votes ballots",
		}),
		VotesCast: f.NewCounter(prometheus.CounterOpts{
			Name: "survey_votes_total",
			Help: "Total number of individual choice votes counted",
		}),
		CaptchaFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_captcha_rejected_total",
			Help: "Requests rejected by captcha verification, by action",
		}, []string{"action"}),
		Registry: reg,
	}
}
