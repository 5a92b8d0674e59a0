package builder

import (
	"fmt"
	"strings"
)

// SagaError reports a multi-step save that failed part way. Step names the
// call that failed; Compensated tells whether the compensating deletes all
// succeeded. Unreverted lists changes that stay on the server either way.
type SagaError struct {
	Step            string
	Err             error
	Compensated     bool
	CompensationErr error
	Unreverted      []string
}

func (e *SagaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Step, e.Err)
	if e.Compensated {
		b.WriteString(" (rolled back)")
	} else if e.CompensationErr != nil {
		fmt.Fprintf(&b, " (rollback failed: %v)", e.CompensationErr)
	}
	if len(e.Unreverted) > 0 {
		fmt.Fprintf(&b, " (kept: %s)", strings.Join(e.Unreverted, ", "))
	}
	return b.String()
}

func (e *SagaError) Unwrap() error {
	return e.Err
}
