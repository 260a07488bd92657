package symretope

// Separation of symresack cover inequalities. For every tracked power the
// LP violation is maximized over the "strict" symresack (equality with the
// image excluded); a positive optimum yields a violated cover inequality.
// These cuts strengthen the LP relaxation but are not needed for
// correctness.

const efficacyEps = 1e-6

// An Inequality is a cut of the form sum Coefs[i]*x[Vars[i]] <= Rhs over
// host variables.
type Inequality struct {
	Vars  []int
	Coefs []float64
	Rhs   float64
}

// InitRows returns the initial LP rows of the constraint: the ordering
// inequalities x_0 >= x_k for every other entry k in the cycle of entry 0.
func (c *Constraint) InitRows() []Inequality {
	if c.n <= 1 {
		return nil
	}
	cycle := c.perm.cycles[c.perm.cycleOf[0]]
	rows := make([]Inequality, 0, len(cycle)-1)
	for _, k := range cycle {
		if k == 0 {
			continue
		}
		rows = append(rows, Inequality{
			Vars:  []int{c.vars[0], c.vars[k]},
			Coefs: []float64{-1.0, 1.0},
			Rhs:   0.0,
		})
	}
	return rows
}

// maximizeStrict maximizes the objective over the strict symresack induced
// by perm/invperm and returns the critical entry of a maximizer along with
// the optimal value. The rows processed so far partition the entries into
// path components whose endpoint objectives are maintained incrementally.
func maximizeStrict(objective []float64, perm, invperm []int) (maxCrit int, maxVal float64) {
	n := len(objective)
	maxCrit = -1
	maxVal = -1e100

	componentEnds := make([]int, n)
	componentObj := make([]float64, n)
	helperObj := 0.0
	for i := 0; i < n; i++ {
		componentEnds[i] = i
		componentObj[i] = objective[i]
		if objective[i] > 0 {
			helperObj += objective[i]
		}
	}

	for crit := 0; crit < n; crit++ {
		critInv := invperm[crit]
		if crit == critInv {
			continue
		}
		// crit cannot be critical when its component already ends in its
		// own image.
		if componentEnds[crit] == critInv {
			continue
		}

		obj := helperObj
		if componentObj[crit] < 0 {
			obj += componentObj[crit]
		}
		if componentObj[critInv] > 0 {
			obj -= componentObj[critInv]
		}
		if obj > maxVal {
			maxVal = obj
			maxCrit = crit
		}

		newCompObj := componentObj[crit] + componentObj[critInv]
		if componentObj[crit] > 0 {
			helperObj -= componentObj[crit]
		}
		if componentObj[critInv] > 0 {
			helperObj -= componentObj[critInv]
		}
		if newCompObj > 0 {
			helperObj += newCompObj
		}

		componentObj[componentEnds[crit]] = newCompObj
		componentObj[componentEnds[critInv]] = newCompObj

		if componentEnds[crit] == crit {
			componentEnds[crit] = componentEnds[critInv]
			componentEnds[componentEnds[critInv]] = crit
		} else {
			ends := componentEnds[crit]
			componentEnds[ends] = componentEnds[critInv]
			componentEnds[componentEnds[critInv]] = ends
		}

		// helperObj upper-bounds all later objectives.
		if maxVal >= helperObj {
			break
		}
	}
	return maxCrit, maxVal
}

// maximizeCritical computes a 0/1 maximizer with the given critical entry:
// entries in the component of crit take value 1, entries in the component
// of its image take 0, every other component takes 1 iff its objective sum
// is positive.
func maximizeCritical(objective []float64, perm, invperm []int, crit int) []int {
	n := len(objective)
	entryComponent := make([]int, n)
	componentObjective := make([]float64, n)
	for i := 0; i < n; i++ {
		entryComponent[i] = i
		componentObjective[i] = objective[i]
	}
	for i := 0; i < crit; i++ {
		if i == invperm[i] {
			continue
		}
		if entryComponent[i] < i {
			continue
		}
		// Forward along edges {e, invperm[e]} for e < crit.
		e := i
		for e < crit {
			e = invperm[e]
			if entryComponent[e] != e {
				break
			}
			entryComponent[e] = i
			componentObjective[i] += objective[e]
		}
		// Backward along edges {perm[e], e}.
		e = perm[i]
		for e < crit {
			if entryComponent[e] != e {
				break
			}
			entryComponent[e] = i
			componentObjective[i] += objective[e]
			e = perm[e]
		}
	}

	solu := make([]int, n)
	for i := 0; i < n; i++ {
		switch {
		case i == invperm[i]:
			solu[i] = 0
		case entryComponent[i] == entryComponent[crit]:
			solu[i] = 1
		case entryComponent[i] == entryComponent[invperm[crit]]:
			solu[i] = 0
		case componentObjective[entryComponent[i]] > 0:
			solu[i] = 1
		default:
			solu[i] = 0
		}
	}
	return solu
}

// SeparateCovers returns violated cover inequalities at the given point.
// vals is indexed by host variable. Depending on SeparateAllViolating,
// either every tracked power is scanned or separation stops after the
// first power that produced a cut.
func (c *Constraint) SeparateCovers(vals []float64) []Inequality {
	if c == nil || c.n < 2 {
		return nil
	}
	n := c.n
	objective := make([]float64, n)
	perm := make([]int, n)
	invperm := make([]int, n)
	var cuts []Inequality

	for k := 1; k <= c.nperms; k++ {
		c.perm.PowerMap(int64(k), perm)
		c.perm.PowerMap(int64(-k), invperm)

		constObjective := 1.0
		for i := 0; i < n; i++ {
			val := vals[c.vars[i]]
			switch {
			case i < perm[i]:
				objective[i] = -val
			case i > perm[i]:
				objective[i] = 1.0 - val
				constObjective += val - 1.0
			default:
				objective[i] = 0
			}
		}

		maxCrit, maxVal := maximizeStrict(objective, perm, invperm)
		if maxCrit < 0 {
			continue
		}
		maxVal += constObjective
		if maxVal <= efficacyEps {
			continue
		}

		solu := maximizeCritical(objective, perm, invperm, maxCrit)

		// Assemble the cover inequality from the maximizer.
		rhs := -1.0
		vars := make([]int, 0, n)
		coefs := make([]float64, 0, n)
		for i := 0; i < n; i++ {
			var coef float64
			switch {
			case i < perm[i]:
				coef = float64(-solu[i])
			case i > perm[i]:
				if solu[i] == 0 {
					rhs += 1.0
				}
				coef = float64(1 - solu[i])
			}
			if coef != 0 {
				vars = append(vars, c.vars[i])
				coefs = append(coefs, coef)
			}
		}
		cuts = append(cuts, Inequality{Vars: vars, Coefs: coefs, Rhs: rhs})
		c.Stats.NbCoversAdded++
		if !c.opts.SeparateAllViolating {
			break
		}
	}
	return cuts
}
