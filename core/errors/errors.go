// Package errors provides standardized error types for the unit registry and
// quantity engine. Every failure mode of the core maps to one typed error
// here; nothing is retried internally and nothing is silently coerced.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrUndefinedUnit indicates an identifier that resolves to no unit
	ErrUndefinedUnit = errors.New("undefined unit")
	// ErrDefinitionConflict indicates a duplicate name, symbol, or alias at load time
	ErrDefinitionConflict = errors.New("definition conflict")
	// ErrCyclicDefinition indicates a reference cycle in the definition graph
	ErrCyclicDefinition = errors.New("cyclic definition")
	// ErrDimensionality indicates arithmetic or conversion between incompatible dimensionalities
	ErrDimensionality = errors.New("dimensionality mismatch")
	// ErrOffsetCalculus indicates ambiguous arithmetic involving an offset (affine) unit
	ErrOffsetCalculus = errors.New("ambiguous operation with offset unit")
	// ErrParse indicates a malformed unit or quantity expression
	ErrParse = errors.New("parse error")
)

// UndefinedUnitError reports an identifier that does not resolve after
// prefix and plural stripping. Name carries the offending token verbatim.
type UndefinedUnitError struct {
	Name string // Token exactly as it appeared in the input
	Err  error  // Underlying error, if any
}

func (e *UndefinedUnitError) Error() string {
	return fmt.Sprintf("%q is not defined in the unit registry", e.Name)
}

func (e *UndefinedUnitError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUndefinedUnit
}

// DefinitionConflictError reports a load-time duplicate symbol or alias.
// The load is rejected atomically; nothing is partially registered.
type DefinitionConflictError struct {
	Name     string // Name, symbol, or alias being claimed
	Existing string // Name of the definition that already owns it
}

func (e *DefinitionConflictError) Error() string {
	if e.Existing != "" && e.Existing != e.Name {
		return fmt.Sprintf("cannot define %q: already claimed by %q", e.Name, e.Existing)
	}
	return fmt.Sprintf("cannot redefine %q", e.Name)
}

func (e *DefinitionConflictError) Unwrap() error { return ErrDefinitionConflict }

// CyclicDefinitionError reports a reference cycle detected while resolving a
// definition to base units.
type CyclicDefinitionError struct {
	Name  string   // Definition that closed the cycle
	Chain []string // Resolution path that led back to Name
}

func (e *CyclicDefinitionError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("cyclic definition of %q via %s", e.Name, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("cyclic definition of %q", e.Name)
}

func (e *CyclicDefinitionError) Unwrap() error { return ErrCyclicDefinition }

// DimensionalityError reports conversion or arithmetic between incompatible
// dimensionalities. Both vectors are carried for diagnostics.
type DimensionalityError struct {
	SrcUnits string // Source units as written
	DstUnits string // Target units as written
	SrcDims  string // Reduced dimensionality of the source
	DstDims  string // Reduced dimensionality of the target
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("cannot convert from %q (%s) to %q (%s)",
		e.SrcUnits, e.SrcDims, e.DstUnits, e.DstDims)
}

func (e *DimensionalityError) Unwrap() error { return ErrDimensionality }

// OffsetUnitCalculusError reports an ambiguous operation on an offset
// (affine) unit, e.g. multiplying by degC or raising it to a power.
type OffsetUnitCalculusError struct {
	Operation string // Operation that was attempted ("multiply", "add", ...)
	Units     string // The affine operand's units
}

func (e *OffsetUnitCalculusError) Error() string {
	return fmt.Sprintf("ambiguous operation %q with offset unit %q; use a delta unit or enable offset autoconversion",
		e.Operation, e.Units)
}

func (e *OffsetUnitCalculusError) Unwrap() error { return ErrOffsetCalculus }

// ParseError reports a malformed expression string with position information.
type ParseError struct {
	Expression string // Full input being parsed
	Position   int    // Byte offset of the offending token, -1 if unknown
	Message    string // Error details
	Err        error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("cannot parse %q at position %d: %s", e.Expression, e.Position, e.Message)
	}
	return fmt.Sprintf("cannot parse %q: %s", e.Expression, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrParse
}

// Helper functions for creating common errors

// NewUndefinedUnit creates an UndefinedUnitError
func NewUndefinedUnit(name string) *UndefinedUnitError {
	return &UndefinedUnitError{Name: name}
}

// NewDefinitionConflict creates a DefinitionConflictError
func NewDefinitionConflict(name, existing string) *DefinitionConflictError {
	return &DefinitionConflictError{Name: name, Existing: existing}
}

// NewCyclicDefinition creates a CyclicDefinitionError
func NewCyclicDefinition(name string, chain []string) *CyclicDefinitionError {
	return &CyclicDefinitionError{Name: name, Chain: chain}
}

// NewDimensionality creates a DimensionalityError
func NewDimensionality(srcUnits, dstUnits, srcDims, dstDims string) *DimensionalityError {
	return &DimensionalityError{
		SrcUnits: srcUnits,
		DstUnits: dstUnits,
		SrcDims:  srcDims,
		DstDims:  dstDims,
	}
}

// NewOffsetCalculus creates an OffsetUnitCalculusError
func NewOffsetCalculus(operation, units string) *OffsetUnitCalculusError {
	return &OffsetUnitCalculusError{Operation: operation, Units: units}
}

// NewParse creates a ParseError
func NewParse(expression string, position int, message string) *ParseError {
	return &ParseError{Expression: expression, Position: position, Message: message}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
