package symretope

import "fmt"

// A Permutation stores a permutation of 0..n-1 together with its cycle
// decomposition, so that applying an arbitrary power to an entry is O(1).
// It is immutable once built.
type Permutation struct {
	perm       []int // the raw index map
	n          int
	cycles     [][]int // each cycle in traversal order; slices into cycleBlock
	cycleBlock []int   // backing storage for cycles
	cycleOf    []int   // cycle id of each entry
	posInCycle []int   // position of each entry within its cycle
	cycleLens  []int
	order      int64 // lcm of cycle lengths
	maxCycle   int
	monotone   bool // at most one descent per cycle traversal
	ordered    bool // every entry of a cycle exceeds the maximum of the previous cycle
}

func gcd(a, b int64) int64 {
	for a > 0 && b > 0 {
		if a > b {
			a = a % b
		} else {
			b = b % a
		}
	}
	if a > b {
		return a
	}
	return b
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

// NewPermutation builds the cycle decomposition of perm. The slice is not
// copied. It returns an error if perm is not a permutation of 0..len(perm)-1.
func NewPermutation(perm []int) (*Permutation, error) {
	n := len(perm)
	if n == 0 {
		return nil, fmt.Errorf("empty permutation")
	}
	seen := make([]bool, n)
	for i, img := range perm {
		if img < 0 || img >= n {
			return nil, fmt.Errorf("permutation entry %d out of range: %d", i, img)
		}
		if seen[img] {
			return nil, fmt.Errorf("duplicate image %d in permutation", img)
		}
		seen[img] = true
	}

	p := &Permutation{
		perm:       perm,
		n:          n,
		cycleBlock: make([]int, n),
		cycleOf:    make([]int, n),
		posInCycle: make([]int, n),
		order:      1,
		monotone:   true,
		ordered:    true,
	}
	for i := range p.cycleOf {
		p.cycleOf[i] = -1
	}

	prevCycleMax := -1
	blockPos := 0
	for i := 0; i < n; i++ {
		if p.cycleOf[i] >= 0 {
			continue
		}
		id := len(p.cycles)
		start := blockPos
		cycleMax := i
		descents := 0
		j := i
		for {
			if j > cycleMax {
				cycleMax = j
			}
			if j < prevCycleMax {
				p.ordered = false
			}
			if perm[j] < j {
				descents++
			}
			p.cycleOf[j] = id
			p.posInCycle[j] = blockPos - start
			p.cycleBlock[blockPos] = j
			blockPos++
			j = perm[j]
			if j == i {
				break
			}
		}
		if descents > 1 {
			p.monotone = false
		}
		prevCycleMax = cycleMax

		size := blockPos - start
		p.cycles = append(p.cycles, p.cycleBlock[start:blockPos])
		p.cycleLens = append(p.cycleLens, size)
		p.order = lcm(p.order, int64(size))
		if size > p.maxCycle {
			p.maxCycle = size
		}
	}
	return p, nil
}

// N returns the number of entries the permutation acts on.
func (p *Permutation) N() int { return p.n }

// Order returns the order of the cyclic group generated by the permutation.
func (p *Permutation) Order() int64 { return p.order }

// Monotone reports whether every cycle traversal has at most one descent.
func (p *Permutation) Monotone() bool { return p.monotone }

// Ordered reports whether, with cycles taken in order of their smallest
// entry, every entry of a cycle exceeds the maximum of the previous cycle,
// i.e. the cycles occupy consecutive index ranges.
func (p *Permutation) Ordered() bool { return p.ordered }

// NCycles returns the number of cycles, including singletons.
func (p *Permutation) NCycles() int { return len(p.cycles) }

// Image returns the image of entry i under the permutation raised to pow.
// Negative powers are allowed.
func (p *Permutation) Image(i, pow int) int {
	c := p.cycleOf[i]
	size := p.cycleLens[c]
	pos := (p.posInCycle[i] + pow) % size
	if pos < 0 {
		pos += size
	}
	return p.cycles[c][pos]
}

// PowerMap fills out with the dense index map of the permutation raised to
// pow. len(out) must be N().
func (p *Permutation) PowerMap(pow int64, out []int) {
	pow = pow % p.order
	if pow < 0 {
		pow += p.order
	}
	for c, cycle := range p.cycles {
		size := p.cycleLens[c]
		shift := int(pow % int64(size))
		for i, e := range cycle {
			out[e] = cycle[(i+shift)%size]
		}
	}
}
