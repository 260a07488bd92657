package symretope

import "testing"

// collector is a ConflictSink for tests.
type collector struct {
	ants []Antecedent
}

func (s *collector) AddLb(v, idx int) {
	s.ants = append(s.ants, Antecedent{Var: v, Bound: LowerBound, Idx: idx})
}

func (s *collector) AddUb(v, idx int) {
	s.ants = append(s.ants, Antecedent{Var: v, Bound: UpperBound, Idx: idx})
}

// Propagating the conflicting orbisack pair must run conflict analysis and
// report the two offending bounds.
func TestCutoffConflict(t *testing.T) {
	nd, c := setup(t, []int{1, 0, 3, 2, 5, 4}, nil)
	if err := nd.Fix(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := nd.Fix(0, 0); err != nil {
		t.Fatal(err)
	}
	if status := c.Propagate(); status != Cutoff {
		t.Fatalf("expected CUTOFF, got %v", status)
	}
	if len(nd.Conflicts) == 0 {
		t.Fatal("no conflict was reported")
	}
	seen := map[Antecedent]bool{}
	for _, ant := range nd.Conflicts[0] {
		seen[Antecedent{Var: ant.Var, Bound: ant.Bound, Idx: CurrentBounds}] = true
	}
	if !seen[Antecedent{Var: 0, Bound: UpperBound, Idx: CurrentBounds}] {
		t.Errorf("conflict misses the upper bound of x0: %v", nd.Conflicts[0])
	}
	if !seen[Antecedent{Var: 1, Bound: LowerBound, Idx: CurrentBounds}] {
		t.Errorf("conflict misses the lower bound of x1: %v", nd.Conflicts[0])
	}
}

// For every direct inference made while propagating, resolving it must
// produce a set of bounds that, replayed alone on a fresh node, still
// forces the inference.
func TestResolveDirectSufficient(t *testing.T) {
	scenarios := []struct {
		perm    []int
		fixings map[int]int
	}{
		{[]int{1, 2, 3, 0}, map[int]int{0: 0}},
		{[]int{1, 2, 3, 0}, map[int]int{3: 1}},
		{[]int{1, 2, 0, 4, 3}, map[int]int{2: 1}},
		{[]int{1, 0, 3, 2}, map[int]int{0: 0, 2: 0}},
	}
	for _, sc := range scenarios {
		nd, c := setup(t, sc.perm, nil)
		applyFixingsToNode(t, nd, sc.fixings)
		if status := c.Propagate(); status != ReducedDom {
			t.Fatalf("perm %v: expected REDUCEDDOM, got %v", sc.perm, status)
		}
		for idx, chg := range nd.Log() {
			if chg.InferInfo < 0 {
				continue
			}
			sink := &collector{}
			c.Resolve(chg.Var, chg.Bound, chg.InferInfo, idx, sink)
			if len(sink.ants) == 0 {
				t.Errorf("perm %v: empty resolution for fixing of x%d", sc.perm, chg.Var)
				continue
			}

			// Replay only the antecedents on a fresh node.
			nd2, c2 := setup(t, sc.perm, nil)
			for _, ant := range sink.ants {
				var val int
				if ant.Bound == LowerBound {
					val = 1
				}
				if err := nd2.Fix(ant.Var, val); err != nil {
					t.Fatalf("perm %v: replay Fix(%d, %d): %v", sc.perm, ant.Var, val, err)
				}
			}
			if status := c2.Propagate(); status == Cutoff {
				continue // the antecedents alone already prove infeasibility
			}
			var wantLb, wantUb int
			if chg.Bound == LowerBound {
				wantLb, wantUb = 1, 1
			}
			if nd2.Lb(chg.Var) != wantLb || nd2.Ub(chg.Var) != wantUb {
				t.Errorf("perm %v: antecedents %v do not force x%d to [%d,%d] (got [%d,%d])",
					sc.perm, sink.ants, chg.Var, wantLb, wantUb, nd2.Lb(chg.Var), nd2.Ub(chg.Var))
			}
		}
	}
}

// Resolving a peek-tagged inference replays the propagator and sparsifies
// the consulted bounds down to a sufficient reason.
func TestResolvePeek(t *testing.T) {
	nd, c := setup(t, []int{1, 2, 3, 0}, nil)
	if err := nd.Fix(0, 0); err != nil {
		t.Fatal(err)
	}
	// Simulate a peek-committed fixing of x3 to 0 right after the decision.
	bdchgidx := nd.NChanges()
	if tightened, infeasible := nd.InferUb(3, c, PeekInference); !tightened || infeasible {
		t.Fatalf("InferUb: tightened=%v infeasible=%v", tightened, infeasible)
	}

	sink := &collector{}
	c.Resolve(3, UpperBound, PeekInference, bdchgidx, sink)
	if len(sink.ants) != 1 {
		t.Fatalf("expected a single antecedent, got %v", sink.ants)
	}
	want := Antecedent{Var: 0, Bound: UpperBound, Idx: bdchgidx}
	if sink.ants[0] != want {
		t.Errorf("expected antecedent %v, got %v", want, sink.ants[0])
	}
}
