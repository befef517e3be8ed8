package sphere

import "fmt"

// ErrDegenerate indicates a zero-length vector where a unit direction was required.
type ErrDegenerate struct {
	Reason string
}

func (e *ErrDegenerate) Error() string {
	return fmt.Sprintf("degenerate vector: %s", e.Reason)
}

// ErrNoConvergence indicates an iterative geodesic solution failed to converge.
type ErrNoConvergence struct {
	Iterations int
}

func (e *ErrNoConvergence) Error() string {
	return fmt.Sprintf("geodesic solution did not converge after %d iterations", e.Iterations)
}
