package mmb

import "testing"

func TestTypeBits(t *testing.T) {
	bound := NewBoundType(3, 1<<4)
	if !bound.Bound() {
		t.Fatal("expected bound")
	}
	if bound.Sort() != 3 {
		t.Fatalf("expected sort 3; got %d", bound.Sort())
	}
	digit, err := bound.BoundDigit()
	if err != nil {
		t.Fatal(err)
	}
	if digit != 1<<4 {
		t.Fatalf("expected digit %#x; got %#x", 1<<4, digit)
	}
	if _, err := bound.Deps(); err == nil {
		t.Fatal("expected Deps to fail on a bound type")
	}

	reg := NewRegularType(5, 0b101)
	if reg.Bound() {
		t.Fatal("expected regular")
	}
	deps, err := reg.Deps()
	if err != nil {
		t.Fatal(err)
	}
	if deps != 0b101 {
		t.Fatalf("expected deps 0b101; got %#b", deps)
	}
}

func TestSortsCompatible(t *testing.T) {
	cases := []struct {
		name     string
		from, to Type
		want     bool
	}{
		{"same sort, different deps", NewRegularType(0, 0b1), NewRegularType(0, 0b10), true},
		{"different sorts", NewRegularType(0, 0), NewRegularType(1, 0), false},
		{"bound into regular", NewBoundType(0, 1), NewRegularType(0, 0), true},
		{"regular into bound", NewRegularType(0, 0), NewBoundType(0, 1), false},
		{"bound into bound", NewBoundType(2, 1), NewBoundType(2, 2), true},
		{"bound into bound, different sorts", NewBoundType(2, 1), NewBoundType(3, 1), false},
	}
	for _, c := range cases {
		if got := sortsCompatible(c.from, c.to); got != c.want {
			t.Errorf("%s: got %v; want %v", c.name, got, c.want)
		}
	}
}

func TestSortModsString(t *testing.T) {
	m := SortMods(SortStrict | SortProvable)
	if m.String() != "strict provable sort" {
		t.Fatalf("got %q", m.String())
	}
	if !m.Strict() || !m.Provable() || m.Pure() || m.Free() {
		t.Fatal("wrong modifier bits")
	}
}
