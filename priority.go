// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package dagbench

// Policy maps a ready unit to its dispatch key. Lower keys are dispatched
// first.
type Policy interface {
	Name() string
	Key(id UnitID, u Unit) (int, error)
}

// Uniform gives every unit the same key, so ready units are dispatched in
// arrival order.
type Uniform struct{}

func (Uniform) Name() string { return "none" }

func (Uniform) Key(UnitID, Unit) (int, error) { return 0, nil }

// StepOrder keys each unit by its step index, favoring units earlier in their
// actor's trajectory.
type StepOrder struct{}

func (StepOrder) Name() string { return "step" }

func (StepOrder) Key(id UnitID, _ Unit) (int, error) {
	return id.Step()
}

// Predefined keys each unit by the priority carried in its payload. A unit
// without a priority of its own takes the lowest priority among its calls.
type Predefined struct{}

func (Predefined) Name() string { return "predefined" }

func (Predefined) Key(id UnitID, u Unit) (int, error) {
	if u.Priority != nil {
		return *u.Priority, nil
	}
	found := false
	key := 0
	for _, c := range u.Calls {
		if c.Priority != nil && (!found || *c.Priority < key) {
			key = *c.Priority
			found = true
		}
	}
	if !found {
		return 0, &MissingPriorityError{Unit: id}
	}
	return key, nil
}

// ParsePolicy resolves a policy by name. The empty string selects none.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "none":
		return Uniform{}, nil
	case "step":
		return StepOrder{}, nil
	case "predefined":
		return Predefined{}, nil
	default:
		return nil, &UnsupportedPolicyError{Name: name}
	}
}

// assignKeys computes every unit's key up front so that a unit the policy
// cannot key is reported before anything is dispatched.
func assignKeys(policy Policy, units []UnitID, p Payload) (map[UnitID]int, error) {
	keys := make(map[UnitID]int, len(units))
	for _, u := range units {
		k, err := policy.Key(u, p[u])
		if err != nil {
			return nil, err
		}
		keys[u] = k
	}
	return keys, nil
}
