package symretope

import "testing"

func TestParseConstraint(t *testing.T) {
	names, perm, err := ParseConstraint("symretope([x1,x2,x3,x4],[1,2,3,0])")
	if err != nil {
		t.Fatal(err)
	}
	wantNames := []string{"x1", "x2", "x3", "x4"}
	wantPerm := []int{1, 2, 3, 0}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Errorf("name %d: expected %q, got %q", i, wantNames[i], names[i])
		}
		if perm[i] != wantPerm[i] {
			t.Errorf("perm %d: expected %d, got %d", i, wantPerm[i], perm[i])
		}
	}
}

func TestParseConstraintSpaces(t *testing.T) {
	names, perm, err := ParseConstraint("  symretope( [ a, b ] , [ 1 , 0 ] )  ")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names: %v", names)
	}
	if len(perm) != 2 || perm[0] != 1 || perm[1] != 0 {
		t.Errorf("unexpected perm: %v", perm)
	}
}

func TestParseConstraintErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"symresack([x],[0])",
		"symretope([x1,x2],[0])",
		"symretope([x1,x2],[0,2])",
		"symretope([x1,x2],[1,1])",
		"symretope([x1,x2],[1,0]",
		"symretope([x1,x2],[1,0]) trailing",
		"symretope([x1,x2],[1,a])",
		"symretope([,x2],[1,0])",
	} {
		if _, _, err := ParseConstraint(s); err == nil {
			t.Errorf("ParseConstraint(%q): expected error, got none", s)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	nd := NewNode(4)
	nd.SetName(0, "a")
	nd.SetName(1, "b")
	nd.SetName(2, "c")
	nd.SetName(3, "d")
	c, err := New(nd, []int{0, 1, 2, 3}, []int{1, 2, 3, 0}, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "symretope([a,b,c,d],[1,2,3,0])"
	if got := c.String(); got != want {
		t.Errorf("String(): expected %q, got %q", want, got)
	}
	names, perm, err := ParseConstraint(c.String())
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(names) != 4 || len(perm) != 4 || names[2] != "c" || perm[3] != 0 {
		t.Errorf("round trip lost data: %v %v", names, perm)
	}
}
