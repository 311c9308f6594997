package derive

// These errors are user errors, not internal errors: bad formulas are
// expected, and a bad formula never takes down a session.

// DerivationError occurs when a derived field's expression fails to
// evaluate: a parse error, a runtime error inside the expression, or
// an exceeded execution bound.  The field keeps its prior value.
type DerivationError struct {
	FieldId string
	Err     error
}

func (e *DerivationError) Error() string {
	return `derivation failed for field "` + e.FieldId + `": ` + e.Err.Error()
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

// CycleError occurs when a derived field (directly or transitively)
// depends on itself.  Fields on a cycle are never evaluated.
type CycleError struct {
	FieldId string
}

func (e *CycleError) Error() string {
	return `derivation cycle involving field "` + e.FieldId + `"`
}
