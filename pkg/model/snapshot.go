// pkg/model/snapshot.go
package model

// NullSnapshot records which cells of a table were absent at one point in time.
// Absent is row-major with the same shape as the table it was taken from.
type NullSnapshot struct {
	Columns []string
	Absent  [][]bool
}

// TakeNullSnapshot computes the absence matrix of t
func TakeNullSnapshot(t *Table) NullSnapshot {
	snap := NullSnapshot{
		Columns: t.ColumnNames(),
		Absent:  make([][]bool, t.Len()),
	}
	for r := 0; r < t.Len(); r++ {
		row := make([]bool, t.Width())
		for c := 0; c < t.Width(); c++ {
			row[c] = t.ColumnAt(c).Values[r] == nil
		}
		snap.Absent[r] = row
	}
	return snap
}

// Rows returns the number of rows covered by the snapshot
func (s NullSnapshot) Rows() int {
	return len(s.Absent)
}

// AbsentCount returns the total number of absent cells
func (s NullSnapshot) AbsentCount() int {
	n := 0
	for _, row := range s.Absent {
		for _, absent := range row {
			if absent {
				n++
			}
		}
	}
	return n
}

// ColumnCounts returns the number of absent cells per column
func (s NullSnapshot) ColumnCounts() map[string]int {
	counts := make(map[string]int, len(s.Columns))
	for _, name := range s.Columns {
		counts[name] = 0
	}
	for _, row := range s.Absent {
		for c, absent := range row {
			if absent {
				counts[s.Columns[c]]++
			}
		}
	}
	return counts
}

// AllPresent reports whether no cell is absent
func (s NullSnapshot) AllPresent() bool {
	return s.AbsentCount() == 0
}
