package fitsio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column describes one binary-table field.
type Column struct {
	Name   string // TTYPE
	Format byte   // TFORM code: L B I J K A E D C M
	Repeat int
	Unit   string // TUNIT
}

// TForm returns the TFORM value, e.g. "5D".
func (c Column) TForm() string {
	return strconv.Itoa(c.Repeat) + string(c.Format)
}

// elemSize returns the width in bytes of one element of format code f.
func elemSize(f byte) (int, error) {
	switch f {
	case 'L', 'B', 'A':
		return 1, nil
	case 'I':
		return 2, nil
	case 'J', 'E':
		return 4, nil
	case 'K', 'D', 'C':
		return 8, nil
	case 'M':
		return 16, nil
	}
	return 0, fmt.Errorf("unsupported TFORM code %q", f)
}

// parseTForm decodes a TFORM value such as "1J", "D" or "70A".
func parseTForm(form string) (byte, int, error) {
	form = strings.TrimSpace(form)
	j := strings.IndexAny(form, "LXBIJKAEDCMPQ")
	if j < 0 {
		return 0, 0, fmt.Errorf("invalid TFORM %q", form)
	}
	repeat := 1
	if j > 0 {
		r, err := strconv.Atoi(form[:j])
		if err != nil || r < 0 {
			return 0, 0, fmt.Errorf("invalid TFORM repeat %q", form)
		}
		repeat = r
	}
	if _, err := elemSize(form[j]); err != nil {
		return 0, 0, err
	}
	return form[j], repeat, nil
}

// Table is a BINTABLE extension held in memory.
type Table struct {
	// Header holds the non-structural keywords (EXTNAME, EXTVER and any
	// table keywords). Structural keywords are derived from Columns.
	Header  *Header
	Columns []Column
	NRows   int

	offsets []int
	rowLen  int
	data    []byte
}

// NewTable allocates a zero-filled table.
func NewTable(extname string, columns []Column, nrows int) (*Table, error) {
	t := &Table{Header: NewHeader(), Columns: columns, NRows: nrows}
	t.Header.Set("EXTNAME", extname, "")
	if err := t.layout(); err != nil {
		return nil, err
	}
	t.data = make([]byte, t.rowLen*nrows)
	return t, nil
}

func (t *Table) layout() error {
	t.offsets = make([]int, len(t.Columns))
	t.rowLen = 0
	for i, c := range t.Columns {
		size, err := elemSize(c.Format)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		t.offsets[i] = t.rowLen
		t.rowLen += size * c.Repeat
	}
	return nil
}

// Name returns EXTNAME.
func (t *Table) Name() string {
	return t.Header.String("EXTNAME")
}

// Col returns the index of the column called name (case-insensitive), or -1.
func (t *Table) Col(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

func (t *Table) cell(row, col int) ([]byte, error) {
	if row < 0 || row >= t.NRows {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, t.NRows)
	}
	if col < 0 || col >= len(t.Columns) {
		return nil, fmt.Errorf("column %d out of range", col)
	}
	c := t.Columns[col]
	size, _ := elemSize(c.Format)
	start := row*t.rowLen + t.offsets[col]
	return t.data[start : start+size*c.Repeat], nil
}

var be = binary.BigEndian

// Floats returns a numeric cell as float64 values.
func (t *Table) Floats(row, col int) ([]float64, error) {
	b, err := t.cell(row, col)
	if err != nil {
		return nil, err
	}
	c := t.Columns[col]
	out := make([]float64, c.Repeat)
	for i := range out {
		switch c.Format {
		case 'D':
			out[i] = math.Float64frombits(be.Uint64(b[8*i:]))
		case 'E':
			out[i] = float64(math.Float32frombits(be.Uint32(b[4*i:])))
		case 'K':
			out[i] = float64(int64(be.Uint64(b[8*i:])))
		case 'J':
			out[i] = float64(int32(be.Uint32(b[4*i:])))
		case 'I':
			out[i] = float64(int16(be.Uint16(b[2*i:])))
		case 'B':
			out[i] = float64(b[i])
		default:
			return nil, fmt.Errorf("column %s: TFORM %s is not numeric", c.Name, c.TForm())
		}
	}
	return out, nil
}

// Ints returns an integer cell.
func (t *Table) Ints(row, col int) ([]int, error) {
	b, err := t.cell(row, col)
	if err != nil {
		return nil, err
	}
	c := t.Columns[col]
	out := make([]int, c.Repeat)
	for i := range out {
		switch c.Format {
		case 'K':
			out[i] = int(int64(be.Uint64(b[8*i:])))
		case 'J':
			out[i] = int(int32(be.Uint32(b[4*i:])))
		case 'I':
			out[i] = int(int16(be.Uint16(b[2*i:])))
		case 'B':
			out[i] = int(b[i])
		default:
			return nil, fmt.Errorf("column %s: TFORM %s is not integral", c.Name, c.TForm())
		}
	}
	return out, nil
}

// Bools returns a logical cell. Anything but 'T' is false.
func (t *Table) Bools(row, col int) ([]bool, error) {
	b, err := t.cell(row, col)
	if err != nil {
		return nil, err
	}
	c := t.Columns[col]
	if c.Format != 'L' {
		return nil, fmt.Errorf("column %s: TFORM %s is not logical", c.Name, c.TForm())
	}
	out := make([]bool, c.Repeat)
	for i := range out {
		out[i] = b[i] == 'T'
	}
	return out, nil
}

// String returns a character cell without trailing NULs and blanks.
func (t *Table) String(row, col int) (string, error) {
	b, err := t.cell(row, col)
	if err != nil {
		return "", err
	}
	c := t.Columns[col]
	if c.Format != 'A' {
		return "", fmt.Errorf("column %s: TFORM %s is not a string", c.Name, c.TForm())
	}
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " "), nil
}

// Complexes returns a complex cell.
func (t *Table) Complexes(row, col int) ([]complex64, error) {
	b, err := t.cell(row, col)
	if err != nil {
		return nil, err
	}
	c := t.Columns[col]
	out := make([]complex64, c.Repeat)
	for i := range out {
		switch c.Format {
		case 'C':
			re := math.Float32frombits(be.Uint32(b[8*i:]))
			im := math.Float32frombits(be.Uint32(b[8*i+4:]))
			out[i] = complex(re, im)
		case 'M':
			re := math.Float64frombits(be.Uint64(b[16*i:]))
			im := math.Float64frombits(be.Uint64(b[16*i+8:]))
			out[i] = complex(float32(re), float32(im))
		default:
			return nil, fmt.Errorf("column %s: TFORM %s is not complex", c.Name, c.TForm())
		}
	}
	return out, nil
}

// SetFloats stores v into a numeric cell. Missing trailing elements are
// written as NaN (floats) or zero (integers).
func (t *Table) SetFloats(row, col int, v []float64) error {
	b, err := t.cell(row, col)
	if err != nil {
		return err
	}
	c := t.Columns[col]
	if len(v) > c.Repeat {
		return fmt.Errorf("column %s: %d values for repeat %d", c.Name, len(v), c.Repeat)
	}
	for i := 0; i < c.Repeat; i++ {
		x := math.NaN()
		if i < len(v) {
			x = v[i]
		}
		switch c.Format {
		case 'D':
			be.PutUint64(b[8*i:], math.Float64bits(x))
		case 'E':
			be.PutUint32(b[4*i:], math.Float32bits(float32(x)))
		default:
			return fmt.Errorf("column %s: TFORM %s is not floating point", c.Name, c.TForm())
		}
	}
	return nil
}

// SetInts stores v into an integer cell.
func (t *Table) SetInts(row, col int, v []int) error {
	b, err := t.cell(row, col)
	if err != nil {
		return err
	}
	c := t.Columns[col]
	if len(v) > c.Repeat {
		return fmt.Errorf("column %s: %d values for repeat %d", c.Name, len(v), c.Repeat)
	}
	for i, x := range v {
		switch c.Format {
		case 'K':
			be.PutUint64(b[8*i:], uint64(int64(x)))
		case 'J':
			be.PutUint32(b[4*i:], uint32(int32(x)))
		case 'I':
			be.PutUint16(b[2*i:], uint16(int16(x)))
		case 'B':
			b[i] = byte(x)
		default:
			return fmt.Errorf("column %s: TFORM %s is not integral", c.Name, c.TForm())
		}
	}
	return nil
}

// SetBools stores v into a logical cell.
func (t *Table) SetBools(row, col int, v []bool) error {
	b, err := t.cell(row, col)
	if err != nil {
		return err
	}
	c := t.Columns[col]
	if c.Format != 'L' || len(v) > c.Repeat {
		return fmt.Errorf("column %s: cannot store %d logicals in TFORM %s", c.Name, len(v), c.TForm())
	}
	for i := range b {
		b[i] = 'F'
		if i < len(v) && v[i] {
			b[i] = 'T'
		}
	}
	return nil
}

// SetString stores s into a character cell, truncating to the repeat count.
func (t *Table) SetString(row, col int, s string) error {
	b, err := t.cell(row, col)
	if err != nil {
		return err
	}
	c := t.Columns[col]
	if c.Format != 'A' {
		return fmt.Errorf("column %s: TFORM %s is not a string", c.Name, c.TForm())
	}
	n := copy(b, s)
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
	return nil
}

// SetComplexes stores v into a complex cell; missing elements are NaN.
func (t *Table) SetComplexes(row, col int, v []complex64) error {
	b, err := t.cell(row, col)
	if err != nil {
		return err
	}
	c := t.Columns[col]
	if c.Format != 'C' || len(v) > c.Repeat {
		return fmt.Errorf("column %s: cannot store %d complex values in TFORM %s", c.Name, len(v), c.TForm())
	}
	nan := float32(math.NaN())
	for i := 0; i < c.Repeat; i++ {
		re, im := nan, nan
		if i < len(v) {
			re, im = real(v[i]), imag(v[i])
		}
		be.PutUint32(b[8*i:], math.Float32bits(re))
		be.PutUint32(b[8*i+4:], math.Float32bits(im))
	}
	return nil
}
