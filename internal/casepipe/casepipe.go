// Package casepipe implements the generic ordered-case dispatcher shared by
// schemabuilder (reflection -> schema) and codec (schema -> encoder/decoder):
// a builder holds an ordered list of cases, each of which either applies to
// an input and produces a result, or declines with a reason; the first case
// to apply wins, and if none applies the builder aggregates every decline
// reason into one error.
package casepipe

import (
	"fmt"
	"strings"
)

// Case is one candidate rule in a Builder's ordered case list. Applicable
// reports whether this case can handle in (given the read-only parts of
// ctx); Build runs it. A case is only invoked for Build after Applicable has
// returned true for the same input.
type Case[In any, Out any, Ctx any] struct {
	// Name identifies the case in aggregated error messages and is not
	// otherwise semantically meaningful.
	Name string

	// Applicable reports whether this case's predicate matches in.
	Applicable func(in In, ctx Ctx) bool

	// Build runs the case. It is only called when Applicable(in, ctx) is
	// true for the same in/ctx pair.
	Build func(in In, ctx Ctx) (Out, error)
}

// Builder runs an ordered sequence of Cases against an input, returning the
// first applicable case's result. Builder itself holds no mutable state;
// all per-build bookkeeping lives in the Ctx value the caller threads
// through.
type Builder[In any, Out any, Ctx any] struct {
	cases []Case[In, Out, Ctx]
}

// NewBuilder constructs a Builder that tries cases in the given order.
func NewBuilder[In any, Out any, Ctx any](cases ...Case[In, Out, Ctx]) *Builder[In, Out, Ctx] {
	return &Builder[In, Out, Ctx]{cases: cases}
}

// UnsupportedInputError aggregates every case's reason for declining an
// input into a single error.
type UnsupportedInputError struct {
	Input   string
	Reasons []string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("casepipe: no case applies to %s (tried: %s)", e.Input, strings.Join(e.Reasons, "; "))
}

// Run evaluates cases in declaration order against in, returning the first
// applicable case's Build result. If no case applies, it returns an
// *UnsupportedInputError describing every case that was tried. inputDesc is
// used only for the aggregated error message.
func (b *Builder[In, Out, Ctx]) Run(in In, ctx Ctx, inputDesc string) (Out, error) {
	var reasons []string
	for _, c := range b.cases {
		if !c.Applicable(in, ctx) {
			reasons = append(reasons, c.Name+": not applicable")
			continue
		}
		return c.Build(in, ctx)
	}
	var zero Out
	return zero, &UnsupportedInputError{Input: inputDesc, Reasons: reasons}
}
