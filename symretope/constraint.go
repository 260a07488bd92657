package symretope

import (
	"fmt"
	"math"
)

// CurrentBounds is the bound-change index denoting the present local bounds
// rather than a historical point in the host's bound-change log.
const CurrentBounds = -1

// A ConflictSink receives the antecedent bounds of a conflict during
// resolution. Bound-change indices passed to it are the ones the resolver
// was invoked with.
type ConflictSink interface {
	// AddLb reports the lower bound of variable v at index idx as part of
	// the conflict (the variable was seen fixed to 1).
	AddLb(v, idx int)
	// AddUb reports the upper bound of variable v at index idx as part of
	// the conflict (the variable was seen fixed to 0).
	AddUb(v, idx int)
}

// A Host is the enclosing solver. It owns the variables, answers bound
// queries for the current node and for historical bound-change indices,
// applies inferred bounds, and runs conflict analysis. All indices are host
// variable indices; the constraint maps its entries onto them.
type Host interface {
	IsBinary(v int) bool
	VarName(v int) string

	// Lb and Ub are the current local bounds, both in {0, 1}.
	Lb(v int) int
	Ub(v int) int
	// LbAt and UbAt are the bounds at a bound-change index; idx ==
	// CurrentBounds means the current local bounds.
	LbAt(v, idx int) int
	UbAt(v, idx int) int

	// InferLb tightens the lower bound of v to 1 on behalf of c, recording
	// inferInfo for later resolution. InferUb tightens the upper bound to 0.
	InferLb(v int, c *Constraint, inferInfo int) (tightened, infeasible bool)
	InferUb(v int, c *Constraint, inferInfo int) (tightened, infeasible bool)

	// BeginConflict starts conflict analysis and returns the sink for
	// antecedents, or nil when conflict analysis is not applicable.
	BeginConflict() ConflictSink
	// AnalyzeConflict finishes the conflict started by BeginConflict.
	AnalyzeConflict(c *Constraint)

	InProbing() bool
}

// Options configures a constraint. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// Peek enables the peek driver: unfixed impactful entries are
	// tentatively fixed both ways and committed to the feasible value when
	// the other is infeasible.
	Peek bool
	// PeekInProbing allows peeking while the host is probing.
	PeekInProbing bool
	// RecompleteInPeek re-runs the completion pass after every fixing the
	// peek driver commits. Not needed for correctness, but it converts
	// peek fixings into directly resolvable ones.
	RecompleteInPeek bool
	// MaxOrder caps the number of non-identity powers tracked. Above the
	// cap, propagation and checking are incomplete.
	MaxOrder int
	// MaxOrderTimesN caps tracked powers multiplied by the support size.
	MaxOrderTimesN int
	// SeparateAllViolating makes separation emit a cut for every violated
	// power instead of stopping at the first.
	SeparateAllViolating bool
	// ForceCopy copies the constraint into sub-problems even when it is not
	// a model constraint.
	ForceCopy bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Peek:                 true,
		PeekInProbing:        false,
		RecompleteInPeek:     true,
		MaxOrder:             10000,
		MaxOrderTimesN:       5000000,
		SeparateAllViolating: true,
		ForceCopy:            false,
	}
}

// Stats counts the work done by a constraint since its creation. Provided
// for information purpose only.
type Stats struct {
	NbPropCalls   int // propagation rounds actually executed
	NbFixings     int // bound tightenings committed to the host
	NbPeekFixings int // subset of NbFixings found by the peek driver
	NbCutoffs     int // infeasibilities detected
	NbCoversAdded int // separated cover inequalities
}

// A Constraint enforces that the binary vector formed by its entries is
// lexicographically maximal within the orbit of the cyclic group generated
// by its permutation. Non-binary variables and fixed points of the input
// permutation are compacted away at construction.
type Constraint struct {
	host      Host
	vars      []int // host variable index per entry
	entryOf   map[int]int
	n         int
	perm      *Permutation
	nperms    int  // tracked non-identity powers
	truncated bool // nperms < order-1, propagation incomplete
	opts      Options
	modelCons bool

	execProp bool
	affected []bool // entries read during the last propagation pass

	Stats Stats
}

// New creates a constraint over the given host variables and permutation.
// vars[i] is permuted to vars[perm[i]]. Entries that are fixed points of
// perm or whose variable is not binary are removed; if nothing remains the
// returned constraint is nil (trivially satisfied).
func New(host Host, vars []int, perm []int, modelCons bool, opts *Options) (*Constraint, error) {
	if len(vars) != len(perm) {
		return nil, fmt.Errorf("got %d variables but a permutation of length %d", len(vars), len(perm))
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	for i, img := range perm {
		if img < 0 || img >= len(perm) {
			return nil, fmt.Errorf("permutation entry %d out of range: %d", i, img)
		}
	}

	// Compact non-binary variables and fixed points out of the support.
	correction := make([]int, len(vars))
	next := 0
	for i := range vars {
		if perm[i] != i && host.IsBinary(vars[i]) {
			correction[i] = next
			next++
		} else {
			correction[i] = -1
		}
	}
	if next == 0 {
		return nil, nil
	}

	cvars := make([]int, 0, next)
	cperm := make([]int, 0, next)
	for i := range vars {
		if correction[i] >= 0 {
			cvars = append(cvars, vars[i])
			cperm = append(cperm, correction[perm[i]])
		}
	}
	for _, img := range cperm {
		if img < 0 {
			return nil, fmt.Errorf("permutation maps a binary variable to a removed entry")
		}
	}

	p, err := NewPermutation(cperm)
	if err != nil {
		return nil, err
	}

	c := &Constraint{
		host:      host,
		vars:      cvars,
		entryOf:   make(map[int]int, len(cvars)),
		n:         len(cvars),
		perm:      p,
		opts:      *opts,
		modelCons: modelCons,
		execProp:  true,
		affected:  make([]bool, len(cvars)),
	}
	for i, v := range cvars {
		c.entryOf[v] = i
	}

	nperms := int64(math.MaxInt32)
	if p.Order()-1 < nperms {
		nperms = p.Order() - 1
	}
	c.nperms = int(nperms)
	if c.opts.MaxOrder > 0 && c.nperms > c.opts.MaxOrder {
		c.nperms = c.opts.MaxOrder
		c.truncated = true
	}
	if c.opts.MaxOrderTimesN > 0 && c.nperms*c.n > c.opts.MaxOrderTimesN {
		c.nperms = c.opts.MaxOrderTimesN / c.n
		if c.nperms <= 0 {
			c.nperms = 1
		}
		c.truncated = true
	}
	return c, nil
}

// N returns the number of entries after compaction.
func (c *Constraint) N() int { return c.n }

// Vars returns the host variable indices of the entries.
func (c *Constraint) Vars() []int { return c.vars }

// Perm returns the constraint's permutation model.
func (c *Constraint) Perm() *Permutation { return c.perm }

// NPerms returns the number of tracked non-identity powers.
func (c *Constraint) NPerms() int { return c.nperms }

// Truncated reports whether the tracked power list had to be cut because
// the group order exceeded the configured caps. A truncated constraint does
// not capture all symmetries: check and propagation are incomplete.
func (c *Constraint) Truncated() bool { return c.truncated }

// ModelCons reports whether the constraint is part of the model.
func (c *Constraint) ModelCons() bool { return c.modelCons }

// BoundChanged is the event callback the host invokes whenever a bound of
// variable v changes. It marks the constraint for re-propagation when the
// variable was impactful in the previous pass. O(1).
func (c *Constraint) BoundChanged(v int) {
	entry, ok := c.entryOf[v]
	if !ok {
		return
	}
	if !c.execProp && c.affected[entry] {
		c.execProp = true
	}
}

// MarkPropagate unconditionally schedules the next Propagate call to run.
func (c *Constraint) MarkPropagate() { c.execProp = true }

// Propagate derives all fixings implied by the constraint under the current
// local bounds. It returns DidNotRun when no impactful variable changed
// since the previous round.
func (c *Constraint) Propagate() PropStatus {
	if c == nil || c.n < 2 {
		return DidNotRun
	}
	if !c.execProp {
		return DidNotRun
	}
	for i := range c.affected {
		c.affected[i] = false
	}
	c.Stats.NbPropCalls++
	infeasible, ngen := c.propagate(nil, true, c.affected)
	if infeasible {
		c.Stats.NbCutoffs++
		return Cutoff
	}
	c.execProp = false
	if ngen > 0 {
		return ReducedDom
	}
	return DidNotFind
}

// Presolve propagates under the current (global) bounds and returns the
// number of variables fixed. A nil or trivial constraint reports
// DidNotFind and can be dropped by the caller.
func (c *Constraint) Presolve() (status PropStatus, nfixed int) {
	if c == nil || c.n < 2 {
		return DidNotFind, 0
	}
	c.Stats.NbPropCalls++
	infeasible, ngen := c.propagate(nil, true, nil)
	if infeasible {
		c.Stats.NbCutoffs++
		return Cutoff, ngen
	}
	if ngen > 0 {
		return ReducedDom, ngen
	}
	return DidNotFind, 0
}

// InfeasibleUnder reports whether the constraint admits no completion when
// exactly the given entry fixings hold and every other entry is free. The
// host's bounds are ignored. Each value must be Fixed0 or Fixed1.
func (c *Constraint) InfeasibleUnder(fixings map[int]Fixing) bool {
	vf := newVirtualFixings(c.n)
	for entry, value := range fixings {
		vf.set(entry, value)
	}
	infeasible, _ := c.propagate(vf, false, nil)
	return infeasible
}

// A Lock tells in which rounding directions an entry can break the
// constraint.
type Lock struct {
	Down bool
	Up   bool
}

// Locks returns, per entry, the rounding locks the constraint requires: in
// every non-singleton cycle the minimum entry locks downward rounding only,
// the maximum upward only, and every other entry both.
func (c *Constraint) Locks() []Lock {
	locks := make([]Lock, c.n)
	for ci := 0; ci < c.perm.NCycles(); ci++ {
		cycle := c.perm.cycles[ci]
		if len(cycle) == 1 {
			continue
		}
		cycMin, cycMax := cycle[0], cycle[0]
		for _, e := range cycle[1:] {
			if e > cycMax {
				cycMax = e
			} else if e < cycMin {
				cycMin = e
			}
		}
		for _, e := range cycle {
			switch e {
			case cycMin:
				locks[e] = Lock{Down: true}
			case cycMax:
				locks[e] = Lock{Up: true}
			default:
				locks[e] = Lock{Down: true, Up: true}
			}
		}
	}
	return locks
}

// Copy creates the constraint anew on another host, mapping every entry
// variable through varmap. Non-model constraints are only copied when
// ForceCopy is set; otherwise Copy returns (nil, nil) for them.
func (c *Constraint) Copy(host Host, varmap func(v int) int) (*Constraint, error) {
	if !c.modelCons && !c.opts.ForceCopy {
		return nil, nil
	}
	vars := make([]int, c.n)
	for i, v := range c.vars {
		vars[i] = varmap(v)
	}
	opts := c.opts
	return New(host, vars, c.perm.perm, c.modelCons, &opts)
}
