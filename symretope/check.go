package symretope

// Check tests whether a full assignment satisfies the constraint. sol is
// indexed by host variable; values are 0 or 1. For every tracked power the
// first entry where the vector differs from its image decides: a (1,0)
// pattern satisfies that power, a (0,1) pattern violates it. On violation
// the offending power and entry pair are returned as the reason. A
// truncated constraint only checks the tracked powers.
func (c *Constraint) Check(sol []int) (ok bool, power, entry int) {
	if c == nil || c.n < 2 {
		return true, 0, 0
	}
	for k := 1; k <= c.nperms; k++ {
		for i := 0; i < c.n; i++ {
			j := c.perm.Image(i, -k)
			vi := sol[c.vars[i]]
			vj := sol[c.vars[j]]
			if vi < vj {
				return false, k, i
			}
			if vi > vj {
				break
			}
		}
	}
	return true, 0, 0
}

// Enforce tests an integral candidate solution during enforcement: a
// violated constraint cuts the candidate off. Separation of a fractional
// relaxation solution goes through SeparateCovers instead.
func (c *Constraint) Enforce(sol []int) PropStatus {
	if ok, _, _ := c.Check(sol); !ok {
		return Cutoff
	}
	return DidNotFind
}
