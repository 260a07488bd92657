/*
Package symretope implements a symmetry-breaking constraint propagator for
binary integer programs. Given a permutation gamma of variable indices, the
constraint requires a binary vector x to be lexicographically maximal in its
orbit under the cyclic group generated by gamma:

	x >= gamma^k(x)  (lexicographically)  for every k >= 1.

Inside a branch-and-bound search, the propagator takes the current partial
fixings (bounds on each binary variable) and either derives further fixings
implied by the constraint, proves the subproblem infeasible, or reports that
nothing changed.

# Building a constraint

The propagator talks to its enclosing solver through the Host interface:
bound queries at the current node and at historical bound-change indices,
bound tightening with inference information, and a conflict-analysis sink.
The Node type is a self-contained Host for tests and tools. A constraint is
created from host variables and a raw index map:

	nd := symretope.NewNode(4)
	c, err := symretope.New(nd, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, true, nil)
	if err != nil { ... }
	nd.Watch(c)

Non-binary variables and fixed points of the permutation are compacted away
during construction; a constraint whose support becomes empty is returned
as nil (it is trivially satisfied).

# Propagating

	nd.Fix(0, 0)
	switch c.Propagate() {
	case symretope.Cutoff:      // infeasible under the current bounds
	case symretope.ReducedDom:  // at least one new fixing was derived
	case symretope.DidNotFind:  // nothing new
	case symretope.DidNotRun:   // no impactful variable changed
	}

Propagation builds, for every tracked power of the permutation, an
implication tree that encodes all fixings consistent with the single lex
comparison against that power; the trees are maintained in lock-step so
that a fixing surfaced by one immediately prunes the others. When the
permutation is monotone (at most one descent per cycle) and ordered (cycles
occupy consecutive index ranges), a faster cycle-by-cycle orchestrator is
used. The
optional peek driver additionally tests unfixed impactful entries against
both tentative values and commits a value whose converse is infeasible.

When the group order exceeds Options.MaxOrder (or MaxOrderTimesN divided by
the support size), only the first powers are tracked and the constraint is
advertised as incomplete through Truncated.

# Conflict resolution

Fixings committed to the host carry inference information: the power of the
permutation that surfaced them, or a negative tag for peek fixings. When
the host asks why an inference holds, Resolve reports a minimal set of
antecedent bounds, either by replaying the single symresack row by row
(direct fixings) or by re-running the propagator under an overlay and
sparsifying the bounds it consulted (peek fixings).

# Checking and separation

Check tests a full assignment against all tracked powers. SeparateCovers
produces violated symresack cover inequalities for a fractional point, and
InitRows yields the ordering inequalities for the initial LP. Both are
optional strengthening devices; correctness rests on propagation and
checking alone.
*/
package symretope
