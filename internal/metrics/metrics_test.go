package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordProblemExposesGauges(t *testing.T) {
	c := New()
	c.RecordProblem(120, 340)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "slotmachine_problem_variables 120") {
		t.Errorf("expected problem_variables gauge = 120, body:\n%s", body)
	}
	if !strings.Contains(body, "slotmachine_problem_constraints 340") {
		t.Errorf("expected problem_constraints gauge = 340, body:\n%s", body)
	}
}

func TestRecordSolveIncrementsCounterAndObjective(t *testing.T) {
	c := New()
	c.RecordSolve("Optimal", 15.5, 123.4, true)
	c.RecordSolve("Infeasible", 5, 0, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `slotmachine_solves_total{status="Optimal"} 1`) {
		t.Errorf("expected one Optimal solve counted, body:\n%s", body)
	}
	if !strings.Contains(body, `slotmachine_solves_total{status="Infeasible"} 1`) {
		t.Errorf("expected one Infeasible solve counted, body:\n%s", body)
	}
	if !strings.Contains(body, "slotmachine_last_objective_value 123.4") {
		t.Errorf("expected last_objective_value = 123.4 (unaffected by the later Infeasible solve), body:\n%s", body)
	}
}
