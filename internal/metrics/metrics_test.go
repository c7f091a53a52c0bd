package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestCountQuestion verifies the questions counter: one increment per /ask
// invocation under its source label, with the exposition name and help
// pinned so dashboards keep matching.
func TestCountQuestion(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CountQuestion("Official Docs")
	m.CountQuestion("Official Docs")
	m.CountQuestion("All sources")

	expected := `
# HELP docsbot_questions_total Questions asked via /ask, by selected documentation source.
# TYPE docsbot_questions_total counter
docsbot_questions_total{source="All sources"} 1
docsbot_questions_total{source="Official Docs"} 2
`
	if err := testutil.CollectAndCompare(m.Questions, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected counter state: %v", err)
	}
}

// TestNilMetrics verifies every recording method is a no-op on a nil
// receiver, so components can run unwired.
func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveRequest("/context", OutcomeOK, 0.1)
	m.ObserveRender(3)
	m.CountQuestion("Official Docs")
}
