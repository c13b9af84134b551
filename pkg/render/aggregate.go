// pkg/render/aggregate.go
package render

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/sales-clean/pkg/converter"
	"github.com/David-Botos/sales-clean/pkg/model"
)

// group is one category of a grouped sum
type group struct {
	Key   string
	Raw   any
	Total float64
	Count int
}

// numericValues returns the numeric cells of column, skipping text such as the
// "Unknown" sentinel and absent cells
func numericValues(t *model.Table, column string) []float64 {
	col, ok := t.Column(column)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(col.Values))
	for _, v := range col.Values {
		if f, ok := converter.ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// pairedValues returns rows where both columns are numeric
func pairedValues(t *model.Table, xCol, yCol string) (xs, ys []float64) {
	x, okX := t.Column(xCol)
	y, okY := t.Column(yCol)
	if !okX || !okY {
		return nil, nil
	}
	for r := 0; r < t.Len(); r++ {
		fx, ok1 := converter.ToFloat(x.Values[r])
		fy, ok2 := converter.ToFloat(y.Values[r])
		if ok1 && ok2 {
			xs = append(xs, fx)
			ys = append(ys, fy)
		}
	}
	return xs, ys
}

// groupSum sums valueCol per distinct keyCol value, skipping rows where the
// value is not numeric or keep returns false. Groups come back sorted by key.
func groupSum(t *model.Table, keyCol, valueCol string, keep func(row int) bool) []group {
	keys, okK := t.Column(keyCol)
	values, okV := t.Column(valueCol)
	if !okK || !okV {
		return nil
	}

	index := make(map[string]int)
	var groups []group
	for r := 0; r < t.Len(); r++ {
		if keep != nil && !keep(r) {
			continue
		}
		f, ok := converter.ToFloat(values.Values[r])
		if !ok || keys.Values[r] == nil {
			continue
		}
		k := fmt.Sprint(keys.Values[r])
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{Key: k, Raw: keys.Values[r]})
		}
		groups[i].Total += f
		groups[i].Count++
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return compareKeys(groups[a].Raw, groups[b].Raw) < 0
	})
	return groups
}

// compareKeys sorts numeric keys numerically and everything else as text
func compareKeys(a, b any) int {
	fa, okA := converter.ToFloat(a)
	fb, okB := converter.ToFloat(b)
	switch {
	case okA && okB:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case okA:
		return -1
	case okB:
		return 1
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// sortByTotalDesc orders groups by total, largest first
func sortByTotalDesc(groups []group) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Total > groups[j].Total })
}

// numericColumns returns the columns holding at least one numeric cell, in table order
func numericColumns(t *model.Table) []string {
	var out []string
	for _, name := range t.ColumnNames() {
		if len(numericValues(t, name)) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// correlationMatrix returns the pairwise Pearson correlation of columns using
// rows where both cells are numeric. Undefined correlations are 0.
func correlationMatrix(t *model.Table, columns []string) [][]float64 {
	m := make([][]float64, len(columns))
	for i := range columns {
		m[i] = make([]float64, len(columns))
		for j := range columns {
			if i == j {
				m[i][j] = 1
				continue
			}
			xs, ys := pairedValues(t, columns[i], columns[j])
			c := 0.0
			if len(xs) > 1 {
				c = stat.Correlation(xs, ys, nil)
			}
			if math.IsNaN(c) || math.IsInf(c, 0) {
				c = 0
			}
			m[i][j] = c
		}
	}
	return m
}
