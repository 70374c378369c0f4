package welcome

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	rendersTotal *prometheus.CounterVec
}

// NewMetrics registers with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rendersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "welcome_renders_total",
				Help: "Welcome pages rendered, by which form fields were present.",
			},
			[]string{"name_present", "email_present"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.rendersTotal)
	}

	return m
}

func (m *Metrics) observeRender(s *Submission) {
	if m == nil {
		return
	}
	m.rendersTotal.WithLabelValues(strconv.FormatBool(s.HasName()), strconv.FormatBool(s.HasEmail())).Inc()
}
