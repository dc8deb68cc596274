package sweep

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidRange is returned for a malformed range declaration.
var ErrInvalidRange = errors.New("sweep: invalid range")

// Range is one swept parameter: either the inclusive span From..To or an
// explicit list of Values. Values are iterated in ascending order.
type Range struct {
	Name   string `yaml:"name" json:"name"`
	From   int    `yaml:"from,omitempty" json:"from,omitempty"`
	To     int    `yaml:"to,omitempty" json:"to,omitempty"`
	Values []int  `yaml:"values,omitempty" json:"values,omitempty"`
}

// maxCombinations bounds the size of an expanded product.
const maxCombinations = 1 << 20

// size returns the number of points of r, saturated at maxCombinations+1.
func (r Range) size() int {
	if len(r.Values) > 0 {
		return len(r.points())
	}
	if r.From > r.To {
		return 0
	}
	if d := uint64(r.To) - uint64(r.From); d < maxCombinations {
		return int(d) + 1
	}
	return maxCombinations + 1
}

// points returns the values of r in ascending order without duplicates.
// A span with From > To is empty.
func (r Range) points() []int {
	if len(r.Values) > 0 {
		out := slices.Clone(r.Values)
		slices.Sort(out)
		return slices.Compact(out)
	}
	if r.From > r.To {
		return nil
	}
	out := make([]int, 0, r.To-r.From+1)
	for v := r.From; v <= r.To; v++ {
		out = append(out, v)
	}
	return out
}

// Binding is one parameter value of a combination.
type Binding struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Combination is one point of the cartesian product, in range declaration
// order.
type Combination []Binding

// Get returns the value bound to name.
func (c Combination) Get(name string) (int, bool) {
	for _, b := range c {
		if b.Name == name {
			return b.Value, true
		}
	}
	return 0, false
}

// String formats the combination as "name=value" pairs.
func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, b := range c {
		parts[i] = fmt.Sprintf("%s=%d", b.Name, b.Value)
	}
	return strings.Join(parts, " ")
}

// Expand returns the cartesian product of ranges. The first range varies
// slowest and every range is iterated in ascending order, so
// {a: 1..2, b: 1..3} yields (1,1) (1,2) (1,3) (2,1) (2,2) (2,3).
// Any empty range makes the product empty.
func Expand(ranges []Range) ([]Combination, error) {
	seen := make(map[string]bool, len(ranges))
	sizes := make([]int, len(ranges))
	for i, r := range ranges {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: range %d has no name", ErrInvalidRange, i)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("%w: %q declared twice", ErrInvalidRange, r.Name)
		}
		seen[r.Name] = true
		sizes[i] = r.size()
	}
	if len(ranges) == 0 || slices.Contains(sizes, 0) {
		return []Combination{}, nil
	}
	total := 1
	for i, n := range sizes {
		if n > maxCombinations/total {
			return nil, fmt.Errorf("%w: product exceeds %d combinations at %q", ErrInvalidRange, maxCombinations, ranges[i].Name)
		}
		total *= n
	}

	axes := make([][]int, len(ranges))
	for i, r := range ranges {
		axes[i] = r.points()
	}

	out := make([]Combination, 0, total)
	idx := make([]int, len(ranges))
	for {
		combo := make(Combination, len(ranges))
		for i, r := range ranges {
			combo[i] = Binding{Name: r.Name, Value: axes[i][idx[i]]}
		}
		out = append(out, combo)

		// Odometer increment, last range fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}
