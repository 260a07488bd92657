package symretope

// This file holds the heart of the propagator: the per-permutation
// implication-tree builder (completeFixings) and the reaction of all trees
// to an applied fixing (applyFixings). Both operate on a propCtx, which
// bundles the state of one propagation run.

// propCtx is the per-call propagation state. When vf is nil, fixings are
// committed to the host; otherwise they stay in the overlay. useBounds
// selects whether the host's local bounds are consulted at all (the peek
// resolver runs with useBounds false so that only the replayed fixings
// count).
type propCtx struct {
	c         *Constraint
	vf        *virtualFixings
	useBounds bool
	checked   []bool // entries whose fixing was looked up, or nil
	graph     *implGraph
	fq        *fixingQueue

	// Peek bookkeeping: entries whose value influenced tree construction.
	impactful    []int
	impactfulSet []bool
}

// markImpactful records that the value of entry steered the builder.
func (pc *propCtx) markImpactful(entry int) {
	if pc.impactfulSet == nil || pc.impactfulSet[entry] {
		return
	}
	pc.impactfulSet[entry] = true
	pc.impactful = append(pc.impactful, entry)
}

// fixingOf returns the current fixing of an entry: the overlay wins, then
// the host's local bounds if enabled. Bound reads are cached in the overlay
// so that repeated lookups stay cheap, and the entry is marked as checked.
func (pc *propCtx) fixingOf(entry int) Fixing {
	if pc.checked != nil {
		pc.checked[entry] = true
	}
	if pc.vf != nil {
		switch v := pc.vf.get(entry); v {
		case Fixed0, Fixed1:
			return v
		case Unfixed:
		default:
			panic("contradictory overlay fixing")
		}
	}
	if pc.useBounds {
		v := pc.c.vars[entry]
		if pc.c.host.Lb(v) > 0 {
			if pc.vf != nil {
				pc.vf.set(entry, Fixed1)
			}
			return Fixed1
		}
		if pc.c.host.Ub(v) < 1 {
			if pc.vf != nil {
				pc.vf.set(entry, Fixed0)
			}
			return Fixed0
		}
	}
	return Unfixed
}

// applyFixing commits a single fixing, either to the host (with inferInfo
// recorded for resolution) or to the overlay.
func (pc *propCtx) applyFixing(entry int, value Fixing, inferInfo int) (tightened, infeasible bool) {
	if pc.vf == nil {
		v := pc.c.vars[entry]
		if value == Fixed0 {
			tightened, infeasible = pc.c.host.InferUb(v, pc.c, inferInfo)
		} else {
			tightened, infeasible = pc.c.host.InferLb(v, pc.c, inferInfo)
		}
		if tightened {
			pc.c.Stats.NbFixings++
			if inferInfo < 0 {
				pc.c.Stats.NbPeekFixings++
			}
		}
		return tightened, infeasible
	}
	tightened = pc.vf.get(entry)&value == 0
	pc.vf.set(entry, value)
	return tightened, pc.vf.get(entry) == Contradiction
}

// enqueue adds a surfaced fixing to the fixing queue. When the converse
// fixing is already queued the subproblem is infeasible; in that case the
// two antecedent powers are handed to conflict analysis (unless running on
// an overlay).
func (pc *propCtx) enqueue(f fix, pow int) (infeasible bool) {
	n := pc.c.n
	contradiction, otherPow := pc.fq.push(f, pow, n)
	if !contradiction {
		return false
	}
	if pc.vf == nil {
		if sink := pc.c.host.BeginConflict(); sink != nil {
			entry := f.entry(n)
			if f.value(n) == Fixed0 {
				pc.c.resolveDirect(entry, UpperBound, pow, CurrentBounds, sink)
				pc.c.resolveDirect(entry, LowerBound, otherPow, CurrentBounds, sink)
			} else {
				pc.c.resolveDirect(entry, LowerBound, pow, CurrentBounds, sink)
				pc.c.resolveDirect(entry, UpperBound, otherPow, CurrentBounds, sink)
			}
			pc.c.host.AnalyzeConflict(pc.c)
		}
	}
	return true
}

// conflictOnPower runs conflict analysis for an infeasibility that follows
// from the lex comparison against a single power under the current bounds.
func (pc *propCtx) conflictOnPower(pow int) {
	if pc.vf != nil {
		return
	}
	if sink := pc.c.host.BeginConflict(); sink != nil {
		pc.c.resolveDirect(-1, LowerBound, pow, CurrentBounds, sink)
		pc.c.host.AnalyzeConflict(pc.c)
	}
}

// applyFixings drains the fixing queue. Every popped fixing is committed
// and then replayed into all implication trees: a node carrying the same
// fixing is spliced out (killing a sibling subtree built on the converse
// assumption), a node carrying the converse fixing makes its path
// infeasible and triggers the collapse rule. Each touched permutation is
// re-scheduled since its completeness preconditions may no longer hold.
func (pc *propCtx) applyFixings(nperms int, ngen *int) (infeasible bool) {
	g := pc.graph
	n := pc.c.n
	for !pc.fq.empty() {
		f, pow := pc.fq.pop(n)
		entry := f.entry(n)
		value := f.value(n)

		tightened, infeasible := pc.applyFixing(entry, value, pow)
		if tightened {
			*ngen++
		}
		if infeasible {
			return true
		}

		for k := 0; k < nperms; k++ {
			tree := g.tree(k)
			leaves := g.leaves[2*k : 2*k+2]
			for side := 0; side < 2; side++ {
				node := &tree[2*entry+side]
				if node.pred == nil {
					continue
				}

				if node.fixing.value(n) == value {
					// The tree assumed what just became true. If the node
					// has a sibling, that sibling's subtree encoded the
					// converse assumption and dies with it.
					if node.pred.succ1 != nil && node.pred.succ2 != nil {
						twin := node.pred.succ1
						if twin == node {
							twin = node.pred.succ2
						}
						removeSubtree(twin, leaves)
					}

					// Splice node out of its path.
					pred := node.pred
					pred.succ1 = node.succ1
					pred.succ2 = node.succ2
					if node.succ1 != nil {
						node.succ1.pred = pred
					}
					if node.succ2 != nil {
						node.succ2.pred = pred
					}
					node.reset()
					if node == leaves[0] {
						leaves[0] = pred
					}
					if node == leaves[1] {
						leaves[1] = pred
					}

					// A necessary child of the root is an unconditional
					// fixing and must be surfaced.
					if pred.kind == nodeRoot {
						if pred.succ1 != nil && pred.succ1.kind == nodeNecc {
							if pc.enqueue(pred.succ1.fixing, g.permPows[k]) {
								return true
							}
						}
						if pred.succ2 != nil && pred.succ2.kind == nodeNecc {
							if pc.enqueue(pred.succ2.fixing, g.permPows[k]) {
								return true
							}
						}
					}
				} else {
					// The tree assumed the converse of what became true.
					if node.kind == nodeNecc {
						anc := node.pred
						removeSubtree(node, leaves)
						for anc.kind == nodeNecc {
							anc = anc.pred
						}
						if anc.kind == nodeRoot {
							// Necessary fixings all the way up to the root
							// contradict the applied fixing.
							pc.conflictOnPower(g.permPows[k])
							return true
						}
						if pc.collapseConditional(anc, k, leaves) {
							return true
						}
					} else {
						// A refuted hypothesis: the whole branch dies.
						removeSubtree(node, leaves)
					}
				}
			}
			g.schedule(k)
		}
	}
	return false
}

// collapseConditional resolves a conditional node whose subtree became
// infeasible. Without a sibling, the node flips into a necessary fixing of
// the converse value. With a sibling, the sibling's necessary child (which
// carries the converse fixing) is promoted one step towards the root. In
// both cases a fixing that reaches the root is surfaced.
func (pc *propCtx) collapseConditional(cond *treeNode, k int, leaves []*treeNode) (infeasible bool) {
	g := pc.graph
	n := pc.c.n
	pred := cond.pred
	twin := pred.succ1
	if twin == cond {
		twin = pred.succ2
	}

	if twin == nil {
		cond.kind = nodeNecc
		cond.fixing = cond.fixing.flip(n)
		if cond.succ1 != nil {
			removeSubtree(cond.succ1, leaves)
		}
		if cond.succ2 != nil {
			removeSubtree(cond.succ2, leaves)
		}
		if pred.kind == nodeRoot {
			return pc.enqueue(cond.fixing, g.permPows[k])
		}
		return false
	}

	// twin has exactly one child, a necessary node fixing the converse of
	// cond. Remove cond's subtree and pull that child in front of twin.
	twinSucc := twin.succ1
	if twinSucc == nil {
		twinSucc = twin.succ2
	}
	removeSubtree(cond, leaves)

	twinSucc.pred = pred
	twin.pred = twinSucc
	if twinSucc.succ1 != nil {
		twinSucc.succ1.pred = twin
	}
	if twinSucc.succ2 != nil {
		twinSucc.succ2.pred = twin
	}
	twin.succ1 = twinSucc.succ1
	twin.succ2 = twinSucc.succ2
	twinSucc.succ1 = twin
	twinSucc.succ2 = nil
	pred.succ1 = twinSucc
	pred.succ2 = nil

	if twinSucc == leaves[0] {
		leaves[0] = twin
	}
	if twinSucc == leaves[1] {
		leaves[1] = twin
	}

	if pred.kind == nodeRoot {
		return pc.enqueue(twinSucc.fixing, g.permPows[k])
	}
	return false
}

// completeFixings computes, for the tracked powers, the complete set of
// fixings implied by the lex-max constraint under the current fixing state.
// With a nil support the group generated by the constraint's permutation is
// processed (powers 1..nperms); otherwise the permutation is restricted to
// one cycle given by support and the group generated by basePow is used.
// Returns whether local infeasibility was detected and how many fixings
// were committed.
func (pc *propCtx) completeFixings(basePow int, support []int) (infeasible bool, ngen int) {
	c := pc.c
	g := pc.graph
	n := c.n
	if n < 2 {
		return false, 0
	}

	var nperms int
	if support == nil {
		nperms = c.nperms
		for k := 0; k < nperms; k++ {
			g.permPows[k] = k + 1
		}
	} else {
		nperms = len(support)/int(gcd(int64(len(support)), int64(basePow))) - 1
		for k := 0; k < nperms; k++ {
			g.permPows[k] = (k + 1) * basePow
		}
	}
	if nperms <= 0 {
		return false, 0
	}

	// Empty trees: each root is its own loose end. Schedule every tracked
	// permutation.
	g.queue = g.queue[:0]
	for k := 0; k < nperms; k++ {
		root := &g.roots[k]
		root.kind = nodeRoot
		root.pred = nil
		root.succ1 = nil
		root.succ2 = nil
		g.leaves[2*k] = root
		g.leaves[2*k+1] = nil
		g.cursors[k] = 0
		g.inQueue[k] = true
		g.queue = append(g.queue, k)
	}

	defer func() {
		// The arenas are recycled across calls: drain the queue and reset
		// every tree before returning, whatever the outcome.
		pc.fq.drain(n)
		for k := 0; k < nperms; k++ {
			removeSubtree(&g.roots[k], g.leaves[2*k:2*k+2])
		}
	}()

	var var1Fixes, var2Fixes [2]Fixing
	for {
		k, ok := g.nextScheduled()
		if !ok {
			break
		}
		permPow := g.permPows[k]
		root := &g.roots[k]
		tree := g.tree(k)
		leaves := g.leaves[2*k : 2*k+2]

		// Advance the cursor of this permutation until its completeness
		// preconditions hold or the support is exhausted.
		for {
			// C1: no loose end remains in the tree.
			if leaves[0] == nil && leaves[1] == nil {
				break
			}

			// C2: the cursor left the range of the support.
			var i int
			if support == nil {
				i = g.cursors[k]
				if i >= n {
					break
				}
			} else {
				if g.cursors[k] >= len(support) {
					break
				}
				i = support[g.cursors[k]]
			}

			j := c.perm.Image(i, -permPow)
			if i == j {
				g.cursors[k]++
				continue
			}
			pc.markImpactful(i)
			pc.markImpactful(j)

			// C3: every rooted path passes a conditional node, the pair
			// (i, j) cannot tighten it, and neither entry reappears at an
			// earlier position.
			jj := c.perm.Image(i, permPow)
			if jj > i && j > i &&
				pc.fixingOf(i) != Fixed0 && pc.fixingOf(j) != Fixed1 &&
				((root.succ1 != nil && root.succ1.kind == nodeCond) ||
					(root.succ2 != nil && root.succ2.kind == nodeCond)) {
				break
			}

			// Determine the joint fixing state of (i, j) per live leaf.
			// On a branch, an entry can be fixed by one of the tree's own
			// nodes; the node keyed to the other side still fixes the
			// entry for both paths when it sits before the branching.
			for side := 0; side < 2; side++ {
				if leaves[side] == nil {
					continue
				}
				v1 := pc.fixingOf(i)
				if v1 == Unfixed {
					if nd := &tree[2*i+side]; nd.pred != nil {
						v1 = nd.fixing.value(n)
					} else if nd := &tree[2*i+(1-side)]; nd.pred != nil {
						v1 = nd.fixing.value(n)
					}
				}
				var1Fixes[side] = v1

				v2 := pc.fixingOf(j)
				if v2 == Unfixed {
					if nd := &tree[2*j+side]; nd.pred != nil {
						v2 = nd.fixing.value(n)
					} else if nd := &tree[2*j+(1-side)]; nd.pred != nil {
						v2 = nd.fixing.value(n)
					}
				}
				var2Fixes[side] = v2
			}

			// Extend the live leaves by one step.
			for side := 0; side < 2; side++ {
				leaf := leaves[side]
				if leaf == nil {
					continue
				}
				v1 := var1Fixes[side]
				v2 := var2Fixes[side]

				switch {
				case v1 == v2 && v1 != Unfixed:
					// (0,0) or (1,1): a constant row, nothing to record.

				case v1 == Fixed1 && v2 == Fixed0:
					// This path already satisfies the strict comparison.
					leaves[side] = nil

				case v1 == Fixed0 && v2 == Unfixed:
					node := &tree[2*j+side]
					node.pred = leaf
					node.kind = nodeNecc
					node.fixing = makeFix(j, Fixed0, n)
					leaf.succ1 = node
					leaves[side] = node

				case v1 == Unfixed && v2 == Fixed1:
					node := &tree[2*i+side]
					node.pred = leaf
					node.kind = nodeNecc
					node.fixing = makeFix(i, Fixed1, n)
					leaf.succ1 = node
					leaves[side] = node

				case v1 == Fixed1 && v2 == Unfixed:
					node := &tree[2*j+side]
					node.pred = leaf
					node.kind = nodeCond
					node.fixing = makeFix(j, Fixed1, n)
					leaf.succ1 = node
					leaves[side] = node

				case v1 == Unfixed && v2 == Fixed0:
					node := &tree[2*i+side]
					node.pred = leaf
					node.kind = nodeCond
					node.fixing = makeFix(i, Fixed0, n)
					leaf.succ1 = node
					leaves[side] = node

				case v1 == Fixed0 && v2 == Fixed1:
					// Infeasible on this path: unwind to the nearest
					// conditional ancestor and collapse it.
					leaves[side] = nil
					for leaf.kind == nodeNecc {
						node := leaf
						leaf = leaf.pred
						leaf.succ1 = nil
						node.reset()
					}
					if leaf.kind == nodeRoot {
						pc.conflictOnPower(permPow)
						return true, ngen
					}
					if pc.collapseConditionalLeaf(leaf, k, leaves) {
						return true, ngen
					}

				case v1 == Unfixed && v2 == Unfixed:
					// Create the two-branch split: one side hypothesizes
					// x_i = 0 (forcing x_j = 0), the other x_j = 1
					// (forcing x_i = 1).
					cond0 := &tree[2*i]
					necc0 := &tree[2*j]
					leaf.succ1 = cond0
					cond0.pred = leaf
					cond0.succ1 = necc0
					cond0.kind = nodeCond
					cond0.fixing = makeFix(i, Fixed0, n)
					necc0.pred = cond0
					necc0.kind = nodeNecc
					necc0.fixing = makeFix(j, Fixed0, n)
					leaves[0] = necc0

					cond1 := &tree[2*j+1]
					necc1 := &tree[2*i+1]
					leaf.succ2 = cond1
					cond1.pred = leaf
					cond1.succ1 = necc1
					cond1.kind = nodeCond
					cond1.fixing = makeFix(j, Fixed1, n)
					necc1.pred = cond1
					necc1.kind = nodeNecc
					necc1.fixing = makeFix(i, Fixed1, n)
					leaves[1] = necc1

					// Both leaves were just rewritten; do not extend the
					// second one in this iteration.
					goto extended

				default:
					panic("unhandled fixing pair")
				}
			}
		extended:

			g.cursors[k]++

			// Surface rule: a necessary child of the root is an
			// unconditional fixing.
			if nd := root.succ1; nd != nil && nd.kind == nodeNecc {
				if pc.enqueue(nd.fixing, permPow) {
					return true, ngen
				}
			}

			// Applying fixings may re-schedule this permutation; its cursor
			// state stays valid either way.
			if pc.applyFixings(nperms, &ngen) {
				return true, ngen
			}
		}
	}
	return false, ngen
}

// collapseConditionalLeaf handles the (0,1) collapse when the conditional
// ancestor is reached from a dying leaf during tree construction. The
// resulting structure is the same as in collapseConditional, but here the
// conditional node itself is the end of its path.
func (pc *propCtx) collapseConditionalLeaf(cond *treeNode, k int, leaves []*treeNode) (infeasible bool) {
	n := pc.c.n
	pred := cond.pred
	twin := pred.succ1
	if twin == cond {
		twin = pred.succ2
	}

	if twin == nil {
		// No sibling: the hypothesis is refuted, its converse is forced.
		cond.kind = nodeNecc
		cond.fixing = cond.fixing.flip(n)
		return false
	}

	// The sibling's single child is a necessary node with the converse
	// fixing of cond; promote it one step towards the root.
	twinSucc := twin.succ1

	if cond == pred.succ1 {
		pred.succ1 = pred.succ2
	}
	pred.succ2 = nil
	cond.reset()

	if twinSucc.succ1 != nil {
		twinSucc.succ1.pred = twin
	}
	twin.succ1 = twinSucc.succ1
	twin.pred = twinSucc

	twinSucc.pred = pred
	twinSucc.succ1 = twin
	pred.succ1 = twinSucc
	pred.succ2 = nil

	if twinSucc == leaves[0] {
		leaves[0] = twin
	}
	if twinSucc == leaves[1] {
		leaves[1] = twin
	}
	return false
}
