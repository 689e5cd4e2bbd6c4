package featuremodel

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy roots. Every error returned by this package wraps exactly one of them.
var (
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrNotFound                = errors.New("not found")
	ErrStructuralViolation     = errors.New("structural violation")
	ErrUnknownFeatureReference = errors.New("unknown feature reference")
)

// Structural errors.
var (
	ErrCyclicMove            = fmt.Errorf("%w: cyclic move", ErrStructuralViolation)
	ErrCyclicSwap            = fmt.Errorf("%w: cyclic swap", ErrStructuralViolation)
	ErrInvalidGroupIndex     = fmt.Errorf("%w: invalid group index", ErrStructuralViolation)
	ErrInvalidPosition       = fmt.Errorf("%w: invalid child position", ErrStructuralViolation)
	ErrFeatureAlreadyBound   = fmt.Errorf("%w: feature already has a tree position", ErrStructuralViolation)
	ErrNoParent              = fmt.Errorf("%w: node has no parent", ErrStructuralViolation)
	ErrNodeNotFound          = fmt.Errorf("%w: node not found", ErrStructuralViolation)
	ErrRootDeletionForbidden = fmt.Errorf("%w: root deletion forbidden", ErrStructuralViolation)
	ErrFeatureInUse          = fmt.Errorf("%w: feature referenced by constraints", ErrStructuralViolation)
	ErrDuplicateName         = fmt.Errorf("%w: duplicate feature name", ErrStructuralViolation)

	// ErrNameRebinds is returned when a new or changed feature name would make
	// an existing constraint resolve to a different feature.
	ErrNameRebinds = fmt.Errorf("%w: name would rebind a constraint", ErrDuplicateName)
)

// Argument errors.
var (
	ErrEmptyName         = fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	ErrNilFormula        = fmt.Errorf("%w: formula must not be nil", ErrInvalidArgument)
	ErrInvalidRange      = fmt.Errorf("%w: invalid range", ErrInvalidArgument)
	ErrForeignEntity     = fmt.Errorf("%w: entity belongs to another model", ErrInvalidArgument)
	ErrConstraintRemoved = fmt.Errorf("%w: constraint has been removed", ErrInvalidArgument)
)

// UnknownReferenceError is returned when a formula mentions names that do not
// resolve to any feature of the model.
type UnknownReferenceError struct {
	Names []string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown feature reference: %s", strings.Join(e.Names, ", "))
}

// Is reports whether target is ErrUnknownFeatureReference.
func (e *UnknownReferenceError) Is(target error) bool {
	return target == ErrUnknownFeatureReference
}

// ErrInvariantViolation is joined into the error returned by Model.Validate
// once per broken invariant.
var ErrInvariantViolation = fmt.Errorf("%w: invariant violated", ErrStructuralViolation)
