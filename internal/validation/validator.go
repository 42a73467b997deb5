// Package validation implements the declarative request-validation engine.
// A Validator is an immutable, ordered list of (predicate, failure) rules
// evaluated in registration order; the first failing rule's error surfaces
// and later rules are not evaluated.
package validation

import "tastebud/internal/apperr"

// Rule pairs a predicate with the failure raised when it does not hold.
// Predicates receive a pointer so that a normalization rule may default an
// optional field in place; rules later in the chain see the normalized value.
type Rule[T any] struct {
	Check func(*T) bool
	Fail  *apperr.Error
}

// Validator evaluates rules in declaration order and short-circuits on the
// first violation. It holds no per-request state and may be shared freely.
type Validator[T any] struct {
	rules []Rule[T]
}

// New builds a validator from rules. The rule list is copied; the validator
// is immutable after construction.
func New[T any](rules ...Rule[T]) *Validator[T] {
	owned := make([]Rule[T], len(rules))
	copy(owned, rules)
	return &Validator[T]{rules: owned}
}

// Validate runs every rule against payload in order and returns the failure
// of the first rule whose predicate does not hold, or nil.
func (v *Validator[T]) Validate(payload *T) error {
	for _, r := range v.rules {
		if !r.Check(payload) {
			return r.Fail
		}
	}
	return nil
}

// Normalize wraps an in-place fixup as an always-passing rule, so defaulting
// of optional fields can sit inside the ordered chain.
func Normalize[T any](fix func(*T)) Rule[T] {
	return Rule[T]{
		Check: func(p *T) bool {
			fix(p)
			return true
		},
	}
}
