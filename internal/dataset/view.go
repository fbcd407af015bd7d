package dataset

import "slices"

// View is a read-only subset of a table's rows, held as row indices.
type View struct {
	table *Table
	idx   []int
}

// All returns a view over every row.
func (t *Table) All() View {
	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	return View{table: t, idx: idx}
}

// Table returns the underlying table.
func (v View) Table() *Table {
	return v.table
}

// Len returns the number of rows in the view.
func (v View) Len() int {
	return len(v.idx)
}

// Indices returns the table row indices in view order.
func (v View) Indices() []int {
	return slices.Clone(v.idx)
}

// Where keeps the rows whose table-level mask entry is true.
func (v View) Where(mask []bool) View {
	idx := make([]int, 0, len(v.idx))
	for _, i := range v.idx {
		if i < len(mask) && mask[i] {
			idx = append(idx, i)
		}
	}
	return View{table: v.table, idx: idx}
}

// Rows returns the raw cells of the rows in the view.
func (v View) Rows() [][]string {
	all := v.table.Rows()
	out := make([][]string, len(v.idx))
	for n, i := range v.idx {
		out[n] = all[i]
	}
	return out
}
