package explain

import "testing"

func TestInfeasible(t *testing.T) {
	// Three stacked 2-cycles; only the first pair is contradictory.
	core, err := Infeasible([]int{1, 0, 3, 2, 5, 4}, map[int]int{0: 0, 1: 1, 2: 1, 4: 0}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(core) != 2 || core[0] != 0 || core[1] != 1 {
		t.Errorf("expected core {0:0, 1:1}, got %v", core)
	}
}

func TestInfeasibleOnFeasible(t *testing.T) {
	if _, err := Infeasible([]int{1, 0}, map[int]int{0: 1}, Options{}); err == nil {
		t.Error("expected an error for a feasible fixing set")
	}
}

func TestImplied(t *testing.T) {
	// On the 4-cycle, fixing the first entry to 0 forces the last to 0.
	core, err := Implied([]int{1, 2, 3, 0}, map[int]int{0: 0}, 3, 0, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(core) != 1 || core[0] != 0 {
		t.Errorf("expected core {0:0}, got %v", core)
	}
}

func TestImpliedNotForced(t *testing.T) {
	if _, err := Implied([]int{1, 2, 3, 0}, map[int]int{0: 1}, 3, 0, Options{}); err == nil {
		t.Error("expected an error when the fixing is not forced")
	}
}

func TestImpliedBadInput(t *testing.T) {
	if _, err := Implied([]int{1, 2, 3, 0}, map[int]int{0: 0}, 0, 1, Options{}); err == nil {
		t.Error("expected an error when the entry is already fixed")
	}
	if _, err := Infeasible([]int{1, 0}, map[int]int{0: 7}, Options{}); err == nil {
		t.Error("expected an error for a non-binary fixing value")
	}
}
