package julia

import (
	"slices"
	"testing"
)

func TestStriped_CoversGrid(t *testing.T) {
	for _, length := range []int{1, 2, 7, 10, 16, 64, 101} {
		for workers := 1; workers <= length; workers++ {
			seen := make([]int, length)
			total := 0
			for id := range workers {
				p := Striped(id, workers, length)
				prev := -1
				for i := range p.Indices() {
					if i < 0 || i >= length {
						t.Fatalf("length %d workers %d: worker %d got index %d out of range", length, workers, id, i)
					}
					if i <= prev {
						t.Fatalf("length %d workers %d: worker %d indices not ascending", length, workers, id)
					}
					prev = i
					seen[i]++
					total++
				}
			}
			if total != length {
				t.Errorf("length %d workers %d: %d indices assigned, want %d", length, workers, total, length)
			}
			for i, n := range seen {
				if n != 1 {
					t.Errorf("length %d workers %d: index %d assigned %d times", length, workers, i, n)
				}
			}
		}
	}
}

func TestStriped_Sizes(t *testing.T) {
	var sizes []int
	for id := range 3 {
		sizes = append(sizes, Striped(id, 3, 10).Len())
	}
	if !slices.Equal(sizes, []int{4, 3, 3}) {
		t.Errorf("sizes = %v, want [4 3 3]", sizes)
	}

	got := slices.Collect(Striped(0, 3, 10).Indices())
	if !slices.Equal(got, []int{0, 3, 6, 9}) {
		t.Errorf("worker 0 indices = %v, want [0 3 6 9]", got)
	}
}

func TestPartition_Empty(t *testing.T) {
	// more workers than points leaves the extra workers idle
	p := Striped(5, 8, 3)
	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
	if got := slices.Collect(p.Indices()); len(got) != 0 {
		t.Errorf("Indices() = %v, want none", got)
	}
}

func TestWhole(t *testing.T) {
	p := Whole(5)
	if got := slices.Collect(p.Indices()); !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
		t.Errorf("Indices() = %v, want [0 1 2 3 4]", got)
	}
}
