package store

import "fmt"

// Condition is one SQL-like predicate term: column comparator value,
// ANDed together by Query.
type Condition struct {
	Column     string
	Comparator string // one of "=", "<", ">", "<=", ">="
	Value      any
}

var validComparators = map[string]bool{
	"=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// ErrBadPredicate indicates a malformed query condition: an unknown
// comparator or an unsupported value type.
type ErrBadPredicate struct {
	Reason string
}

func (e *ErrBadPredicate) Error() string {
	return fmt.Sprintf("bad query predicate: %s", e.Reason)
}

func validateConditions(conditions []Condition) error {
	for _, c := range conditions {
		if c.Column == "" {
			return &ErrBadPredicate{Reason: "empty column name"}
		}
		if !validComparators[c.Comparator] {
			return &ErrBadPredicate{Reason: fmt.Sprintf("unknown comparator %q", c.Comparator)}
		}
	}
	return nil
}
