// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench_test

import (
	"strconv"
	"testing"

	"github.com/petenewcomb/dagbench"
	"github.com/stretchr/testify/require"
)

func TestUnitID(t *testing.T) {
	chk := require.New(t)

	id := dagbench.NewUnitID("Isabella Rodriguez", 12)
	chk.Equal(dagbench.UnitID("Isabella Rodriguez:12"), id)
	chk.Equal("Isabella Rodriguez", id.Actor())
	step, err := id.Step()
	chk.NoError(err)
	chk.Equal(12, step)

	replica, err := id.Replica(3)
	chk.NoError(err)
	chk.Equal(dagbench.UnitID("Isabella Rodriguez_3:12"), replica)

	actor, step, err := dagbench.ParseUnitID("a:b:4")
	chk.NoError(err)
	chk.Equal("a:b", actor)
	chk.Equal(4, step)
}

func TestParseUnitIDErrors(t *testing.T) {
	chk := require.New(t)

	_, _, err := dagbench.ParseUnitID("nocolon")
	var invalid *dagbench.InvalidUnitIDError
	chk.ErrorAs(err, &invalid)
	chk.Equal("nocolon", invalid.ID)
	chk.Nil(invalid.Unwrap())

	_, _, err = dagbench.ParseUnitID("actor:x")
	chk.ErrorAs(err, &invalid)
	chk.ErrorIs(err, strconv.ErrSyntax)

	_, err = dagbench.UnitID("bad").Replica(0)
	chk.Error(err)
	chk.Equal("bad", dagbench.UnitID("bad").Actor())
}
