package oiio

import (
	"fmt"

	"oifits/pkg/fitsio"
)

// Column names shared by several tables.
const (
	colTargetID = "TARGET_ID"
	colTime     = "TIME"
	colMJD      = "MJD"
	colIntTime  = "INT_TIME"
	colStaIndex = "STA_INDEX"
	colFlag     = "FLAG"
	colUCoord   = "UCOORD"
	colVCoord   = "VCOORD"
)

func col(name string, format byte, repeat int, unit string) fitsio.Column {
	return fitsio.Column{Name: name, Format: format, Repeat: repeat, Unit: unit}
}

// strWidth returns the character column width needed for values, never
// less than least.
func strWidth(least int, values ...string) int {
	w := least
	for _, v := range values {
		w = max(w, len(v))
	}
	return w
}

// rowReader decodes the cells of one table row by column name. The first
// failure sticks and later calls return zero values, so a row can be read
// in one go and checked once.
type rowReader struct {
	t   *fitsio.Table
	row int
	err error
}

func (r *rowReader) column(name string) int {
	if r.err != nil {
		return -1
	}
	i := r.t.Col(name)
	if i < 0 {
		r.err = fmt.Errorf("missing column %s", name)
	}
	return i
}

func (r *rowReader) has(name string) bool {
	return r.t.Col(name) >= 0
}

func (r *rowReader) floats(name string) []float64 {
	i := r.column(name)
	if i < 0 {
		return nil
	}
	v, err := r.t.Floats(r.row, i)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *rowReader) float(name string) float64 {
	v := r.floats(name)
	if len(v) == 0 {
		r.fail("column %s is empty", name)
		return 0
	}
	return v[0]
}

// optFloat reads a scalar from an optional column, or returns def.
func (r *rowReader) optFloat(name string, def float64) float64 {
	if !r.has(name) {
		return def
	}
	return r.float(name)
}

func (r *rowReader) float32s(name string) []float32 {
	v := r.floats(name)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func (r *rowReader) ints(name string) []int {
	i := r.column(name)
	if i < 0 {
		return nil
	}
	v, err := r.t.Ints(r.row, i)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *rowReader) int(name string) int {
	v := r.ints(name)
	if len(v) == 0 {
		r.fail("column %s is empty", name)
		return 0
	}
	return v[0]
}

func (r *rowReader) bools(name string) []bool {
	i := r.column(name)
	if i < 0 {
		return nil
	}
	v, err := r.t.Bools(r.row, i)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *rowReader) str(name string) string {
	i := r.column(name)
	if i < 0 {
		return ""
	}
	v, err := r.t.String(r.row, i)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *rowReader) optStr(name string) string {
	if !r.has(name) {
		return ""
	}
	return r.str(name)
}

func (r *rowReader) complexes(name string) []complex64 {
	i := r.column(name)
	if i < 0 {
		return nil
	}
	v, err := r.t.Complexes(r.row, i)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *rowReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

// rowWriter is the encoding counterpart of rowReader. Columns are looked up
// by name in a table built from a known layout, so a miss is a programming
// error and is reported the same way as a value error.
type rowWriter struct {
	t   *fitsio.Table
	row int
	err error
}

func (w *rowWriter) column(name string) int {
	if w.err != nil {
		return -1
	}
	i := w.t.Col(name)
	if i < 0 {
		w.err = fmt.Errorf("no column %s in layout", name)
	}
	return i
}

func (w *rowWriter) floats(name string, v []float64) {
	if i := w.column(name); i >= 0 {
		w.keep(w.t.SetFloats(w.row, i, v))
	}
}

func (w *rowWriter) float(name string, v float64) {
	w.floats(name, []float64{v})
}

func (w *rowWriter) float32s(name string, v []float32) {
	f := make([]float64, len(v))
	for i, x := range v {
		f[i] = float64(x)
	}
	w.floats(name, f)
}

func (w *rowWriter) ints(name string, v []int) {
	if i := w.column(name); i >= 0 {
		w.keep(w.t.SetInts(w.row, i, v))
	}
}

func (w *rowWriter) int(name string, v int) {
	w.ints(name, []int{v})
}

func (w *rowWriter) bools(name string, v []bool) {
	if i := w.column(name); i >= 0 {
		w.keep(w.t.SetBools(w.row, i, v))
	}
}

func (w *rowWriter) str(name, v string) {
	if i := w.column(name); i >= 0 {
		w.keep(w.t.SetString(w.row, i, v))
	}
}

func (w *rowWriter) complexes(name string, v []complex64) {
	if i := w.column(name); i >= 0 {
		w.keep(w.t.SetComplexes(w.row, i, v))
	}
}

func (w *rowWriter) keep(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}
