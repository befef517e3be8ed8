package segtree

import "fmt"

// ErrCorruptArtifact indicates a segment-tree artifact file failed its
// header check or was truncated.
type ErrCorruptArtifact struct {
	Reason string
}

func (e *ErrCorruptArtifact) Error() string {
	return fmt.Sprintf("corrupt segment tree artifact: %s", e.Reason)
}

// ErrEmptyTree indicates an attempt to build a tree from zero segments.
type ErrEmptyTree struct{}

func (e *ErrEmptyTree) Error() string {
	return "cannot build a segment tree from zero segments"
}
