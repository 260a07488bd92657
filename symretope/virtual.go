package symretope

// virtualFixings is a sparse overlay of hypothetical fixings on top of the
// solver bounds. It is used by the peek driver and the conflict resolver to
// propagate "what if" fixings without touching the host. Clearing costs time
// proportional to the number of set entries, not to n.
type virtualFixings struct {
	stack  []int    // entries that currently carry an overlay fixing
	lookup []Fixing // dense per-entry state; Unfixed when absent
}

func newVirtualFixings(n int) *virtualFixings {
	return &virtualFixings{
		stack:  make([]int, 0, n),
		lookup: make([]Fixing, n),
	}
}

// set records the given fixing for entry. value must not be Unfixed. Setting
// the converse of an existing fixing leaves the entry in Contradiction,
// which callers detect through get.
func (vf *virtualFixings) set(entry int, value Fixing) {
	if vf.lookup[entry] == Unfixed {
		vf.stack = append(vf.stack, entry)
	}
	vf.lookup[entry] |= value
}

func (vf *virtualFixings) get(entry int) Fixing {
	return vf.lookup[entry]
}

func (vf *virtualFixings) clear() {
	for _, entry := range vf.stack {
		vf.lookup[entry] = Unfixed
	}
	vf.stack = vf.stack[:0]
}

// copyFrom resets vf and replays all fixings of other.
func (vf *virtualFixings) copyFrom(other *virtualFixings) {
	vf.clear()
	for _, entry := range other.stack {
		vf.set(entry, other.lookup[entry])
	}
}
