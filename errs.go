// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import "fmt"

type constError string

func (e constError) Error() string {
	return string(e)
}

// ErrBackendPanic is recorded against a call whose backend panicked. The unit
// is still completed so its dependents are not left blocked.
const ErrBackendPanic = constError("backend panicked")

// ErrNoBackend is returned by [Run] and [RunBaseline] when called without a
// backend.
const ErrNoBackend = constError("backend must be non-nil")

// UnsupportedPolicyError reports a priority policy name that is not one of
// none, step, or predefined.
type UnsupportedPolicyError struct {
	Name string
}

func (e *UnsupportedPolicyError) Error() string {
	return fmt.Sprintf("unsupported priority policy %q", e.Name)
}

// MissingPriorityError reports a unit that carries no priority while the
// predefined policy is active.
type MissingPriorityError struct {
	Unit UnitID
}

func (e *MissingPriorityError) Error() string {
	return fmt.Sprintf("unit %s has no predefined priority", e.Unit)
}

// MissingPayloadError reports a graph node with no payload entry.
type MissingPayloadError struct {
	Unit UnitID
}

func (e *MissingPayloadError) Error() string {
	return fmt.Sprintf("unit %s has no payload", e.Unit)
}

// AsymmetricEdgeError reports an edge present in only one of the forward and
// reverse mappings.
type AsymmetricEdgeError struct {
	From UnitID
	To   UnitID
}

func (e *AsymmetricEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s is not mirrored in both forward and reverse mappings", e.From, e.To)
}

// InvalidUnitIDError reports an identifier that does not have the form
// actor:step.
type InvalidUnitIDError struct {
	ID  string
	Err error
}

func (e *InvalidUnitIDError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid unit id %q: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("invalid unit id %q", e.ID)
}

func (e *InvalidUnitIDError) Unwrap() error {
	return e.Err
}
