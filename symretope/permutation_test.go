package symretope

import "testing"

type permTest struct {
	perm     []int
	order    int64
	ncycles  int
	monotone bool
	ordered  bool
}

var permTests = []permTest{
	{[]int{1, 2, 3, 0}, 4, 1, true, true},
	{[]int{1, 0, 3, 2, 5, 4}, 2, 3, true, true},
	{[]int{1, 2, 0, 4, 3}, 6, 2, true, true},
	{[]int{2, 0, 1}, 3, 1, false, true},
	{[]int{3, 2, 1, 0}, 2, 2, true, false},
	{[]int{0, 1, 2}, 1, 3, true, true},
	{[]int{1, 2, 3, 4, 5, 0, 7, 6}, 6, 2, true, true},
}

func TestNewPermutation(t *testing.T) {
	for _, test := range permTests {
		p, err := NewPermutation(test.perm)
		if err != nil {
			t.Errorf("NewPermutation(%v): %v", test.perm, err)
			continue
		}
		if p.Order() != test.order {
			t.Errorf("order of %v: expected %d, got %d", test.perm, test.order, p.Order())
		}
		if p.NCycles() != test.ncycles {
			t.Errorf("ncycles of %v: expected %d, got %d", test.perm, test.ncycles, p.NCycles())
		}
		if p.Monotone() != test.monotone {
			t.Errorf("monotone of %v: expected %v, got %v", test.perm, test.monotone, p.Monotone())
		}
		if p.Ordered() != test.ordered {
			t.Errorf("ordered of %v: expected %v, got %v", test.perm, test.ordered, p.Ordered())
		}
	}
}

func TestNewPermutationInvalid(t *testing.T) {
	for _, perm := range [][]int{
		{},
		{1},
		{-1, 0},
		{0, 2},
		{1, 1},
	} {
		if _, err := NewPermutation(perm); err == nil {
			t.Errorf("NewPermutation(%v): expected error, got none", perm)
		}
	}
}

// Image must agree with iterating the raw map k times from scratch.
func TestImageMatchesIteration(t *testing.T) {
	for _, test := range permTests {
		p, err := NewPermutation(test.perm)
		if err != nil {
			t.Fatalf("NewPermutation(%v): %v", test.perm, err)
		}
		n := len(test.perm)
		for k := 0; k <= 2*int(p.Order()); k++ {
			for i := 0; i < n; i++ {
				want := i
				for it := 0; it < k; it++ {
					want = test.perm[want]
				}
				if got := p.Image(i, k); got != want {
					t.Errorf("perm %v: Image(%d, %d) = %d, expected %d", test.perm, i, k, got, want)
				}
				// A negative power is the inverse of the positive one.
				if got := p.Image(p.Image(i, k), -k); got != i {
					t.Errorf("perm %v: Image(Image(%d, %d), %d) = %d", test.perm, i, k, got, i)
				}
			}
		}
	}
}

func TestPowerMap(t *testing.T) {
	for _, test := range permTests {
		p, err := NewPermutation(test.perm)
		if err != nil {
			t.Fatalf("NewPermutation(%v): %v", test.perm, err)
		}
		n := len(test.perm)
		out := make([]int, n)
		for k := int64(-3); k <= p.Order()+1; k++ {
			p.PowerMap(k, out)
			for i := 0; i < n; i++ {
				if out[i] != p.Image(i, int(k)) {
					t.Errorf("perm %v: PowerMap(%d)[%d] = %d, Image gives %d", test.perm, k, i, out[i], p.Image(i, int(k)))
				}
			}
		}
	}
}
