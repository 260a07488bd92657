package symretope

// Conflict resolution: asked why an earlier inference holds, the propagator
// reports a set of historical bounds that forces it. Direct inferences
// (tagged with the power of the permutation whose tree surfaced them) are
// replayed against the single symresack row by row; peek inferences are
// replayed through the full propagator and then sparsified.

// Resolve reports to sink the antecedent bounds that forced the inference
// on the given entry. bound tells which bound of the entry was tightened,
// inferInfo is the tag recorded at inference time (the permutation power,
// or a negative value for a peek fixing) and bdchgidx is the position in
// the host's bound-change log just before the inference.
func (c *Constraint) Resolve(entry int, bound BoundType, inferInfo, bdchgidx int, sink ConflictSink) {
	if inferInfo >= 0 {
		c.resolveDirect(entry, bound, inferInfo, bdchgidx, sink)
		return
	}
	c.resolvePeek(entry, bound, bdchgidx, sink)
}

// resolveDirect walks the rows of the symresack induced by the given power
// under the historical bounds, mirroring the propagation table, until the
// assumed converse of the inference produces the (0,1) pattern. Every bound
// consulted on the way is an antecedent. entry may be -1 when plain
// infeasibility (no inference) is resolved.
func (c *Constraint) resolveDirect(entry int, bound BoundType, permPow, bdchgidx int, sink ConflictSink) {
	n := c.n
	host := c.host
	vfix := make([]Fixing, n)
	if entry >= 0 {
		// Assume the converse of the inferred fixing: infeasibility under
		// that assumption is what certifies the inference.
		if bound == UpperBound {
			vfix[entry] = Fixed1
		} else {
			vfix[entry] = Fixed0
		}
	}

	for i := 0; i < n; i++ {
		j := c.perm.Image(i, -permPow)
		if i == j {
			continue
		}

		if vfix[i] == Fixed0 && vfix[j] == Fixed1 {
			break
		}

		// A 0 at i propagates to j unless j is already bound to 1.
		if vfix[i] == Fixed0 {
			if host.LbAt(c.vars[j], bdchgidx) > 0 {
				sink.AddLb(c.vars[j], bdchgidx)
				break
			}
			vfix[j] = Fixed0
			continue
		}

		// A 1 at j propagates to i unless i is already bound to 0.
		if vfix[j] == Fixed1 {
			if host.UbAt(c.vars[i], bdchgidx) < 1 {
				sink.AddUb(c.vars[i], bdchgidx)
				break
			}
			vfix[i] = Fixed1
			continue
		}

		if vfix[i] == Fixed1 && vfix[j] == Fixed0 {
			panic("resolution reached a strictly decreasing row")
		}

		// Remaining patterns are (1,_), (_,0) or (_,_): consult the
		// historical bounds of the still unknown entries.
		if host.UbAt(c.vars[i], bdchgidx) < 1 {
			sink.AddUb(c.vars[i], bdchgidx)
			vfix[i] = Fixed0
			if host.LbAt(c.vars[j], bdchgidx) > 0 {
				vfix[j] = Fixed1
				if j != entry {
					sink.AddLb(c.vars[j], bdchgidx)
				}
				break
			}
			vfix[j] = Fixed0
		}
		if host.LbAt(c.vars[j], bdchgidx) > 0 {
			sink.AddLb(c.vars[j], bdchgidx)
			vfix[j] = Fixed1
			if host.UbAt(c.vars[i], bdchgidx) < 1 {
				vfix[i] = Fixed0
				if i != entry {
					sink.AddUb(c.vars[i], bdchgidx)
				}
				break
			}
			vfix[i] = Fixed1
		}

		if vfix[i] == Unfixed || vfix[j] == Unfixed || vfix[i] != vfix[j] {
			panic("resolution left a row unresolved")
		}
	}
}

// resolvePeek certifies a peek inference: the propagator is replayed under
// an overlay holding the converse fixing plus everything fixed at
// bdchgidx, recording which entries were consulted. The recorded set is
// then sparsified by dropping entries one at a time and keeping only those
// whose removal restores feasibility.
func (c *Constraint) resolvePeek(entry int, bound BoundType, bdchgidx int, sink ConflictSink) {
	n := c.n
	host := c.host

	initial := newVirtualFixings(n)
	for j := 0; j < n; j++ {
		if j == entry {
			continue
		}
		if host.UbAt(c.vars[j], bdchgidx) < 1 {
			initial.set(j, Fixed0)
		} else if host.LbAt(c.vars[j], bdchgidx) > 0 {
			initial.set(j, Fixed1)
		}
	}
	if bound == LowerBound {
		initial.set(entry, Fixed0)
	} else {
		initial.set(entry, Fixed1)
	}

	vfix := newVirtualFixings(n)
	vfix.copyFrom(initial)
	conflict := make([]bool, n)
	infeasible, _ := c.propagate(vfix, false, conflict)
	if !infeasible {
		panic("peek resolution could not reproduce infeasibility")
	}

	for i := 0; i < n; i++ {
		if i == entry || initial.get(i) == Unfixed {
			conflict[i] = false
			continue
		}
		if !conflict[i] {
			continue
		}
		// Does infeasibility survive without entry i?
		vfix.clear()
		for _, e := range initial.stack {
			if e == entry || (e != i && conflict[e]) {
				vfix.set(e, initial.get(e))
			}
		}
		if bad, _ := c.propagate(vfix, false, nil); bad {
			conflict[i] = false
		}
	}

	for j := 0; j < n; j++ {
		if j == entry || !conflict[j] {
			continue
		}
		if host.UbAt(c.vars[j], bdchgidx) < 1 {
			sink.AddUb(c.vars[j], bdchgidx)
		} else if host.LbAt(c.vars[j], bdchgidx) > 0 {
			sink.AddLb(c.vars[j], bdchgidx)
		}
	}
}
