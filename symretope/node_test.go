package symretope

import "testing"

func TestNodeBoundLog(t *testing.T) {
	nd := NewNode(3)
	if err := nd.Fix(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := nd.Fix(1, 1); err != nil {
		t.Fatal(err)
	}
	if nd.Lb(1) != 1 || nd.Ub(0) != 0 {
		t.Errorf("bounds after fixing: x0 [%d,%d], x1 [%d,%d]", nd.Lb(0), nd.Ub(0), nd.Lb(1), nd.Ub(1))
	}

	// Historical queries: before any change, everything was free.
	if nd.UbAt(0, 0) != 1 {
		t.Errorf("UbAt(0, 0): expected 1, got %d", nd.UbAt(0, 0))
	}
	if nd.LbAt(1, 1) != 0 {
		t.Errorf("LbAt(1, 1): expected 0, got %d", nd.LbAt(1, 1))
	}
	// After both changes the current bounds apply.
	if nd.UbAt(0, 2) != 0 || nd.LbAt(1, 2) != 1 {
		t.Errorf("bounds at index 2: ub x0 = %d, lb x1 = %d", nd.UbAt(0, 2), nd.LbAt(1, 2))
	}
	if nd.UbAt(0, CurrentBounds) != 0 {
		t.Errorf("UbAt(0, CurrentBounds): expected 0, got %d", nd.UbAt(0, CurrentBounds))
	}
}

func TestNodeFixErrors(t *testing.T) {
	nd := NewNode(2)
	if err := nd.Fix(0, 2); err == nil {
		t.Error("Fix(0, 2): expected error")
	}
	if err := nd.Fix(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := nd.Fix(0, 0); err == nil {
		t.Error("Fix(0, 0) after Fix(0, 1): expected error")
	}
}

func TestNodeInfer(t *testing.T) {
	nd := NewNode(2)
	tightened, infeasible := nd.InferLb(0, nil, 3)
	if !tightened || infeasible {
		t.Errorf("InferLb: tightened=%v infeasible=%v", tightened, infeasible)
	}
	// Re-inferring the same bound is not a tightening.
	if tightened, _ = nd.InferLb(0, nil, 3); tightened {
		t.Error("second InferLb still reported a tightening")
	}
	// Inferring the converse is infeasible.
	if _, infeasible = nd.InferUb(0, nil, 4); !infeasible {
		t.Error("InferUb on a 1-fixed variable should be infeasible")
	}
	if nd.Log()[0].InferInfo != 3 {
		t.Errorf("inference info not recorded: %+v", nd.Log()[0])
	}
}

// Constraints built over non-binary variables or fixed points must compact
// them away.
func TestConstraintCompaction(t *testing.T) {
	nd := NewNode(5)
	nd.SetInteger(2)
	// perm fixes entry 2 anyway and swaps the two outer pairs.
	c, err := New(nd, []int{0, 1, 2, 3, 4}, []int{1, 0, 2, 4, 3}, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.N() != 4 {
		t.Fatalf("expected 4 entries after compaction, got %d", c.N())
	}
	vars := c.Vars()
	want := []int{0, 1, 3, 4}
	for i := range want {
		if vars[i] != want[i] {
			t.Errorf("entry %d: expected variable %d, got %d", i, want[i], vars[i])
		}
	}
	if c.Perm().Order() != 2 {
		t.Errorf("expected order 2 after compaction, got %d", c.Perm().Order())
	}
}

func TestConstraintTrivial(t *testing.T) {
	nd := NewNode(3)
	c, err := New(nd, []int{0, 1, 2}, []int{0, 1, 2}, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("identity permutation should yield a nil constraint, got %v", c)
	}
}

func TestConstraintTruncated(t *testing.T) {
	// Two coprime cycles of lengths 3 and 5 give order 15.
	perm := []int{1, 2, 0, 4, 5, 6, 7, 3}
	nd := NewNode(len(perm))
	vars := make([]int, len(perm))
	for i := range vars {
		vars[i] = i
	}
	opts := DefaultOptions()
	opts.MaxOrder = 4
	c, err := New(nd, vars, perm, true, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Truncated() {
		t.Error("expected the constraint to be truncated")
	}
	if c.NPerms() != 4 {
		t.Errorf("expected 4 tracked powers, got %d", c.NPerms())
	}
}

func TestLocks(t *testing.T) {
	_, c := setup(t, []int{1, 2, 3, 0, 5, 4}, nil)
	locks := c.Locks()
	want := []Lock{
		{Down: true},
		{Down: true, Up: true},
		{Down: true, Up: true},
		{Up: true},
		{Down: true},
		{Up: true},
	}
	for i := range want {
		if locks[i] != want[i] {
			t.Errorf("lock of x%d: expected %+v, got %+v", i, want[i], locks[i])
		}
	}
}

func TestCopy(t *testing.T) {
	nd, c := setup(t, []int{1, 2, 3, 0}, nil)
	nd2 := NewNode(4)
	c2, err := c.Copy(nd2, func(v int) int { return v })
	if err != nil {
		t.Fatal(err)
	}
	if c2 == nil || c2.N() != c.N() || c2.Perm().Order() != c.Perm().Order() {
		t.Errorf("copy lost structure: %v", c2)
	}

	// Non-model constraints are not copied unless forced.
	vars := []int{0, 1, 2, 3}
	cn, err := New(nd, vars, []int{1, 2, 3, 0}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := cn.Copy(nd2, func(v int) int { return v }); err != nil || got != nil {
		t.Errorf("non-model copy: expected nil, got %v (err %v)", got, err)
	}
	opts := DefaultOptions()
	opts.ForceCopy = true
	cf, err := New(nd, vars, []int{1, 2, 3, 0}, false, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := cf.Copy(nd2, func(v int) int { return v }); err != nil || got == nil {
		t.Errorf("forced copy: expected a constraint, got %v (err %v)", got, err)
	}
}

func TestPeekDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Peek = false
	nd, c := setup(t, []int{1, 2, 3, 0}, opts)
	if err := nd.Fix(0, 0); err != nil {
		t.Fatal(err)
	}
	if status := c.Propagate(); status != ReducedDom {
		t.Errorf("expected REDUCEDDOM, got %v", status)
	}
	if c.Stats.NbPeekFixings != 0 {
		t.Errorf("peek disabled but %d peek fixings committed", c.Stats.NbPeekFixings)
	}
}

func TestPeekInProbing(t *testing.T) {
	nd, c := setup(t, []int{1, 2, 3, 0}, nil)
	nd.SetProbing(true)
	if err := nd.Fix(0, 0); err != nil {
		t.Fatal(err)
	}
	if status := c.Propagate(); status != ReducedDom {
		t.Errorf("expected REDUCEDDOM, got %v", status)
	}
	if c.Stats.NbPeekFixings != 0 {
		t.Errorf("probing peek disabled by default but %d peek fixings committed", c.Stats.NbPeekFixings)
	}
}
