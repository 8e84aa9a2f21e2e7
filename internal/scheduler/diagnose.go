package scheduler

// diagnose walks every named constraint and variable and returns the names
// of those whose zero-assignment valuation is inconsistent with their
// definition. This is a diagnostic aid, not a certificate of infeasibility.
func (s *Session) diagnose() (violatedConstraints, violatedVariables []string) {
	for _, c := range s.Problem.Constraints() {
		if c.ViolatedAtZero() {
			violatedConstraints = append(violatedConstraints, c.Name)
		}
	}
	for _, v := range s.Problem.Variables() {
		if v.ViolatedAtZero() {
			violatedVariables = append(violatedVariables, v.Name)
		}
	}
	return violatedConstraints, violatedVariables
}
