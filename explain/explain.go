// Package explain provides facilities to understand infeasible or forced
// fixing sets of symretope constraints. Given fixings that make a
// constraint infeasible, it extracts a minimal infeasible subset; given a
// fixing forced by others, it extracts a minimal set of reasons. The
// extraction is deletion-based: candidates are dropped one at a time and
// kept only when their removal restores feasibility, so each call runs the
// propagator once for the initial check and once per fixing in the set.
package explain

import (
	"fmt"

	"github.com/mipsym/symretope/symretope"
)

// Options is a set of options for the explanation process.
type Options struct {
	// If Verbose is true, information about the minimization is written on
	// stdout.
	Verbose bool
}

// Infeasible returns a minimal subset of the given fixings that still makes
// the symretope constraint over perm infeasible. fixings maps entries to 0
// or 1. An error is returned when the input is not infeasible to begin
// with.
func Infeasible(perm []int, fixings map[int]int, opts Options) (map[int]int, error) {
	c, err := build(perm)
	if err != nil {
		return nil, err
	}
	full, err := toFixings(fixings, len(perm))
	if err != nil {
		return nil, err
	}
	if !c.InfeasibleUnder(full) {
		return nil, fmt.Errorf("cannot explain a feasible fixing set")
	}
	core := minimize(c, full, opts)
	return fromFixings(core), nil
}

// Implied returns a minimal subset of the given fixings that forces the
// entry to the given value under the constraint. An error is returned when
// the fixings do not force it.
func Implied(perm []int, fixings map[int]int, entry, value int, opts Options) (map[int]int, error) {
	c, err := build(perm)
	if err != nil {
		return nil, err
	}
	full, err := toFixings(fixings, len(perm))
	if err != nil {
		return nil, err
	}
	if _, ok := full[entry]; ok {
		return nil, fmt.Errorf("entry %d is part of the fixing set", entry)
	}
	converse := symretope.Fixed0
	if value == 0 {
		converse = symretope.Fixed1
	}
	full[entry] = converse
	if !c.InfeasibleUnder(full) {
		return nil, fmt.Errorf("fixings do not force entry %d to %d", entry, value)
	}
	core := minimize(c, full, opts)
	delete(core, entry)
	return fromFixings(core), nil
}

func build(perm []int) (*symretope.Constraint, error) {
	nd := symretope.NewNode(len(perm))
	vars := make([]int, len(perm))
	for i := range vars {
		vars[i] = i
	}
	c, err := symretope.New(nd, vars, perm, false, nil)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("constraint is trivially satisfied")
	}
	if c.N() != len(perm) {
		// Compaction would renumber entries and make the reported cores
		// ambiguous.
		return nil, fmt.Errorf("permutation has fixed points; remove them first")
	}
	return c, nil
}

func toFixings(fixings map[int]int, n int) (map[int]symretope.Fixing, error) {
	out := make(map[int]symretope.Fixing, len(fixings))
	for entry, value := range fixings {
		if entry < 0 || entry >= n {
			return nil, fmt.Errorf("entry %d out of range", entry)
		}
		switch value {
		case 0:
			out[entry] = symretope.Fixed0
		case 1:
			out[entry] = symretope.Fixed1
		default:
			return nil, fmt.Errorf("fixing of entry %d must be 0 or 1, got %d", entry, value)
		}
	}
	return out, nil
}

func fromFixings(fixings map[int]symretope.Fixing) map[int]int {
	out := make(map[int]int, len(fixings))
	for entry, value := range fixings {
		if value == symretope.Fixed1 {
			out[entry] = 1
		} else {
			out[entry] = 0
		}
	}
	return out
}

// minimize drops fixings one at a time, keeping only those whose removal
// makes the set feasible. The input map is reduced in place. Entries the
// core must keep (like the converse fixing in Implied) are tested like any
// other; they survive because removing them restores feasibility.
func minimize(c *symretope.Constraint, fixings map[int]symretope.Fixing, opts Options) map[int]symretope.Fixing {
	entries := make([]int, 0, len(fixings))
	for entry := range fixings {
		entries = append(entries, entry)
	}
	for _, entry := range entries {
		value := fixings[entry]
		delete(fixings, entry)
		if !c.InfeasibleUnder(fixings) {
			fixings[entry] = value
		} else if opts.Verbose {
			fmt.Printf("c dropped fixing of entry %d, %d candidate(s) left\n", entry, len(fixings))
		}
	}
	return fixings
}
