// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

import (
	"strconv"
	"strings"
)

// UnitID identifies a work unit within one graph instance. It has the form
// actor:step, where step is a base-10 integer.
type UnitID string

// NewUnitID returns the identifier for the given actor label and step index.
func NewUnitID(actor string, step int) UnitID {
	return UnitID(actor + ":" + strconv.Itoa(step))
}

// ParseUnitID splits an identifier into its actor label and step index. The
// split happens at the last colon, so actor labels may themselves contain
// colons.
func ParseUnitID(s string) (actor string, step int, err error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return "", 0, &InvalidUnitIDError{ID: s}
	}
	step, err = strconv.Atoi(s[i+1:])
	if err != nil {
		return "", 0, &InvalidUnitIDError{ID: s, Err: err}
	}
	return s[:i], step, nil
}

// Actor returns the actor label, or the whole identifier if it is malformed.
func (id UnitID) Actor() string {
	actor, _, err := ParseUnitID(string(id))
	if err != nil {
		return string(id)
	}
	return actor
}

// Step returns the step index.
func (id UnitID) Step() (int, error) {
	_, step, err := ParseUnitID(string(id))
	return step, err
}

// Replica returns the identifier of this unit in copy i of a replicated graph,
// formed by suffixing the actor label with _i.
func (id UnitID) Replica(i int) (UnitID, error) {
	actor, step, err := ParseUnitID(string(id))
	if err != nil {
		return "", err
	}
	return NewUnitID(actor+"_"+strconv.Itoa(i), step), nil
}

func (id UnitID) String() string {
	return string(id)
}
