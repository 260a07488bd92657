package symretope

// propagate runs the propagation algorithm appropriate for the constraint's
// permutation: the cycle-by-cycle fast path when it is monotone and
// ordered, the general orchestrator otherwise. With a non-nil overlay the
// host is left untouched and conflict analysis is skipped.
func (c *Constraint) propagate(vf *virtualFixings, useBounds bool, checked []bool) (infeasible bool, ngen int) {
	findComplete := c.opts.Peek
	if findComplete && c.host.InProbing() && !c.opts.PeekInProbing {
		findComplete = false
	}
	if c.perm.Monotone() && c.perm.Ordered() {
		return c.propMonotoneOrdered(vf, useBounds, checked, findComplete)
	}
	return c.propStandard(vf, useBounds, checked, findComplete)
}

// propStandard handles general permutations. It may be incomplete when the
// tracked power list is truncated. After the base completion pass, the peek
// driver tests every impactful unfixed entry against both tentative values
// and commits the forced one when the other is infeasible.
func (c *Constraint) propStandard(vf *virtualFixings, useBounds bool, checked []bool, doPeek bool) (infeasible bool, ngen int) {
	pc := &propCtx{
		c:         c,
		vf:        vf,
		useBounds: useBounds,
		checked:   checked,
		graph:     newImplGraph(c.n, c.nperms),
		fq:        newFixingQueue(c.n),
	}
	peeking := vf == nil && doPeek
	if peeking {
		pc.impactful = make([]int, 0, c.n)
		pc.impactfulSet = make([]bool, c.n)
	}

	infeasible, ngen = pc.completeFixings(1, nil)
	if infeasible || !peeking {
		return infeasible, ngen
	}

	peekOverlay := newVirtualFixings(c.n)
	peekCtx := &propCtx{
		c:         c,
		vf:        peekOverlay,
		useBounds: useBounds,
		checked:   checked,
		graph:     pc.graph,
		fq:        pc.fq,
	}
	tightened := false
	for len(pc.impactful) > 0 {
		i := pc.impactful[len(pc.impactful)-1]
		pc.impactful = pc.impactful[:len(pc.impactful)-1]

		if tightened && c.opts.RecompleteInPeek {
			// Re-complete so that fixings implied by the committed one are
			// found directly (with a resolvable antecedent power) instead
			// of by further peeking.
			bad, more := pc.completeFixings(1, nil)
			ngen += more
			if bad {
				return true, ngen
			}
		}
		tightened = false

		if pc.fixingOf(i) != Unfixed {
			continue
		}

		// What if entry i were 0?
		peekOverlay.clear()
		peekOverlay.set(i, Fixed0)
		if bad, _ := peekCtx.completeFixings(1, nil); bad {
			t, inf := pc.applyFixing(i, Fixed1, -1)
			if inf {
				return true, ngen
			}
			if t {
				ngen++
				tightened = true
			}
			continue
		}

		// What if entry i were 1?
		peekOverlay.clear()
		peekOverlay.set(i, Fixed1)
		if bad, _ := peekCtx.completeFixings(1, nil); bad {
			t, inf := pc.applyFixing(i, Fixed0, -1)
			if inf {
				return true, ngen
			}
			if t {
				ngen++
				tightened = true
			}
		}
	}
	return false, ngen
}

// propMonotoneOrdered decomposes propagation cycle by cycle, tracking the
// equality power mu: on the already-processed prefix of the vector only
// the powers gamma^k with k a multiple of mu can still leave x equal to
// gamma^k(x), so each subsequent cycle only faces the subgroup generated by
// gamma^mu restricted to it.
func (c *Constraint) propMonotoneOrdered(vf *virtualFixings, useBounds bool, checked []bool, findComplete bool) (infeasible bool, ngen int) {
	maxNPerms := c.perm.maxCycle - 1
	if maxNPerms < 1 {
		maxNPerms = 1
	}
	graph := newImplGraph(c.n, maxNPerms)
	fq := newFixingQueue(c.n)
	return c.propMonotoneHotstart(vf, useBounds, checked, findComplete, 1, 0, graph, fq)
}

// propMonotoneHotstart is the monotone-ordered orchestrator starting from a
// given cycle and equality power. The peek driver re-enters it with
// findComplete false to test feasibility of a tentative fixing.
func (c *Constraint) propMonotoneHotstart(vf *virtualFixings, useBounds bool, checked []bool, findComplete bool,
	eqPow int, startCycle int, graph *implGraph, fq *fixingQueue) (infeasible bool, ngen int) {

	pc := &propCtx{
		c:         c,
		vf:        vf,
		useBounds: useBounds,
		checked:   checked,
		graph:     graph,
		fq:        fq,
	}
	peeking := vf == nil && findComplete
	if peeking {
		pc.impactful = make([]int, 0, c.n)
		pc.impactfulSet = make([]bool, c.n)
	}

	var peekOverlay *virtualFixings
	for ci := startCycle; ci < c.perm.NCycles(); ci++ {
		if int64(eqPow) == c.perm.Order() {
			// Only the identity remains.
			break
		}
		cycle := c.perm.cycles[ci]
		cyclen := len(cycle)

		// The restriction of gamma^eqPow to this cycle is the identity.
		if eqPow%cyclen == 0 {
			continue
		}

		bad, more := pc.completeFixings(eqPow, cycle)
		ngen += more
		if bad {
			return true, ngen
		}

		if peeking {
			if peekOverlay == nil {
				peekOverlay = newVirtualFixings(c.n)
			}

			// In this cycle, the minimal unfixed entry in the first half
			// always admits a 1-fixing (set all later unfixed entries to
			// 0), and every other unfixed entry admits a 0-fixing; peek
			// only has to test the respective opposite value.
			minUnfixedFirstHalf := -1
			for _, e := range cycle[:cyclen/2] {
				if pc.fixingOf(e) == Unfixed {
					minUnfixedFirstHalf = e
					break
				}
			}

			tightened := false
			for len(pc.impactful) > 0 {
				i := pc.impactful[len(pc.impactful)-1]
				pc.impactful = pc.impactful[:len(pc.impactful)-1]

				if tightened && c.opts.RecompleteInPeek {
					bad, more := pc.completeFixings(eqPow, cycle)
					ngen += more
					if bad {
						return true, ngen
					}
				}
				tightened = false

				if pc.fixingOf(i) != Unfixed {
					continue
				}

				if i == minUnfixedFirstHalf {
					peekOverlay.clear()
					peekOverlay.set(i, Fixed0)
					bad, _ := c.propMonotoneHotstart(peekOverlay, useBounds, checked, false, eqPow, ci, graph, fq)
					if bad {
						t, inf := pc.applyFixing(i, Fixed1, -1)
						if inf {
							return true, ngen
						}
						if t {
							ngen++
							tightened = true
						}
					}
				} else {
					peekOverlay.clear()
					peekOverlay.set(i, Fixed1)
					bad, _ := c.propMonotoneHotstart(peekOverlay, useBounds, checked, false, eqPow, ci, graph, fq)
					if bad {
						t, inf := pc.applyFixing(i, Fixed0, -1)
						if inf {
							return true, ngen
						}
						if t {
							ngen++
							tightened = true
						}
					}
				}
			}
		}

		// Update the equality power. While an unfixed entry remains, any
		// non-identity shift of this cycle can still be strictly broken;
		// otherwise the minimal shift reproducing the fixed pattern bounds
		// the subgroup that keeps equality.
		unfixed := false
		values := make([]int, cyclen)
		for pos, e := range cycle {
			switch pc.fixingOf(e) {
			case Unfixed:
				unfixed = true
			case Fixed0:
				values[pos] = 0
			case Fixed1:
				values[pos] = 1
			default:
				panic("contradictory fixing")
			}
			if unfixed {
				break
			}
		}
		if unfixed {
			eqPow = int(lcm(int64(eqPow), int64(cyclen)))
		} else {
			k := 1
			for ; k < cyclen; k++ {
				same := true
				for pos := 0; pos < cyclen; pos++ {
					if values[pos] != values[(pos+k)%cyclen] {
						same = false
						break
					}
				}
				if same {
					break
				}
			}
			eqPow = int(lcm(int64(eqPow), int64(k)))
		}
	}
	return false, ngen
}
