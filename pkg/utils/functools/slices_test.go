package functools

import (
	"strings"
	"testing"
)

func TestMapFilter(t *testing.T) {
	words := []string{"vis", "", "t3", "flux"}

	upper := Map(words, strings.ToUpper)
	if strings.Join(upper, ",") != "VIS,,T3,FLUX" {
		t.Errorf("Map = %v", upper)
	}
	if Map[string, int](nil, func(string) int { return 0 }) != nil {
		t.Error("Map(nil) should be nil")
	}

	long := Filter(words, func(s string) bool { return len(s) > 2 })
	if len(long) != 2 || long[0] != "vis" || long[1] != "flux" {
		t.Errorf("Filter = %v", long)
	}
}

func TestReduceCount(t *testing.T) {
	n := []int{1, 2, 3, 4}
	if got := Reduce(n, 10, func(acc, v int) int { return acc + v }); got != 20 {
		t.Errorf("Reduce = %d, want 20", got)
	}
	if got := Count(n, func(v int) bool { return v%2 == 0 }); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
}

func TestSetSkipsEmptyKeys(t *testing.T) {
	set := Set([]string{"A", "", "B", "A"}, func(s string) string { return s })
	if len(set) != 2 || !set["A"] || !set["B"] {
		t.Errorf("Set = %v", set)
	}
}
