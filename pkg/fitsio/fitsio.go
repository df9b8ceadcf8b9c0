// Package fitsio reads and writes FITS files made of an empty primary HDU
// followed by binary-table extensions, which is the layout used by OIFITS.
//
// Files are sequences of 2880-byte blocks. Each HDU starts with a header of
// 80-character cards terminated by END, padded with blanks to a block
// boundary, followed by its data padded with zeros. Binary data are
// big-endian. Image extensions, ASCII tables and heap (variable-length)
// columns are not supported; non-BINTABLE extensions are skipped.
package fitsio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	blockSize     = 2880
	cardLen       = 80
	cardsPerBlock = blockSize / cardLen
)

// structural keywords are derived from the table layout and never taken
// from Table.Header.
var structural = map[string]bool{
	"SIMPLE": true, "XTENSION": true, "BITPIX": true, "NAXIS": true, "NAXIS1": true,
	"NAXIS2": true, "PCOUNT": true, "GCOUNT": true, "TFIELDS": true, "EXTEND": true, "END": true,
}

func isStructural(key string) bool {
	if structural[key] {
		return true
	}
	for _, p := range []string{"TTYPE", "TFORM", "TUNIT", "NAXIS"} {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// File is a primary header plus its binary tables, in file order.
type File struct {
	Primary *Header
	Tables  []*Table

	// Skipped records BINTABLE extensions whose columns could not be
	// decoded; their data were skipped and reading went on.
	Skipped []SkippedTable
}

// SkippedTable identifies an unreadable extension.
type SkippedTable struct {
	Index   int // HDU number, primary = 0
	ExtName string
	Err     error
}

// Encode writes f to w.
func Encode(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)

	primary := NewHeader()
	primary.Set("SIMPLE", true, "file conforms to FITS standard")
	primary.Set("BITPIX", 8, "")
	primary.Set("NAXIS", 0, "")
	primary.Set("EXTEND", true, "")
	if f.Primary != nil {
		copyCards(primary, f.Primary)
	}
	if err := writeHeader(bw, primary); err != nil {
		return err
	}

	for _, t := range f.Tables {
		if err := writeTable(bw, t); err != nil {
			return fmt.Errorf("table %s: %w", t.Name(), err)
		}
	}
	return bw.Flush()
}

func copyCards(dst, src *Header) {
	for _, c := range src.Cards() {
		if !isStructural(c.Key) {
			dst.Set(c.Key, c.Value, c.Comment)
		}
	}
}

func writeTable(w io.Writer, t *Table) error {
	h := NewHeader()
	h.Set("XTENSION", "BINTABLE", "binary table extension")
	h.Set("BITPIX", 8, "")
	h.Set("NAXIS", 2, "")
	h.Set("NAXIS1", t.rowLen, "width of table in bytes")
	h.Set("NAXIS2", t.NRows, "number of rows")
	h.Set("PCOUNT", 0, "")
	h.Set("GCOUNT", 1, "")
	h.Set("TFIELDS", len(t.Columns), "")
	for i, c := range t.Columns {
		h.Set(nth("TTYPE", i+1), c.Name, "")
		h.Set(nth("TFORM", i+1), c.TForm(), "")
		if c.Unit != "" {
			h.Set(nth("TUNIT", i+1), c.Unit, "")
		}
	}
	copyCards(h, t.Header)

	if err := writeHeader(w, h); err != nil {
		return err
	}
	if _, err := w.Write(t.data); err != nil {
		return err
	}
	return pad(w, len(t.data), 0)
}

func writeHeader(w io.Writer, h *Header) error {
	n := 0
	for _, c := range h.Cards() {
		if _, err := io.WriteString(w, formatCard(c)); err != nil {
			return err
		}
		n += cardLen
	}
	if _, err := io.WriteString(w, formatCard(Card{Key: "END"})); err != nil {
		return err
	}
	return pad(w, n+cardLen, ' ')
}

func pad(w io.Writer, n int, fill byte) error {
	rem := n % blockSize
	if rem == 0 {
		return nil
	}
	_, err := w.Write([]byte(strings.Repeat(string(fill), blockSize-rem)))
	return err
}

// Decode reads a whole FITS file. A BINTABLE whose columns cannot be
// decoded is recorded in Skipped; a broken header or truncated data is a
// fatal error because the next HDU cannot be located.
func Decode(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	primary, err := readHeader(br)
	if err != nil {
		return nil, fmt.Errorf("primary header: %w", err)
	}
	if ok, _ := primary.Bool("SIMPLE"); !ok {
		return nil, errors.New("primary header: SIMPLE is not T")
	}
	if err := skipData(br, primary); err != nil {
		return nil, fmt.Errorf("primary data: %w", err)
	}

	f := &File{Primary: NewHeader()}
	copyCards(f.Primary, primary)

	for hdu := 1; ; hdu++ {
		h, err := readHeader(br)
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, fmt.Errorf("HDU %d: %w", hdu, err)
		}

		if h.String("XTENSION") != "BINTABLE" {
			if err := skipData(br, h); err != nil {
				return nil, fmt.Errorf("HDU %d: %w", hdu, err)
			}
			continue
		}

		t, terr := tableFromHeader(h)
		if terr != nil {
			if err := skipData(br, h); err != nil {
				return nil, fmt.Errorf("HDU %d: %w", hdu, err)
			}
			f.Skipped = append(f.Skipped, SkippedTable{Index: hdu, ExtName: h.String("EXTNAME"), Err: terr})
			continue
		}
		if err := readData(br, t, h); err != nil {
			return nil, fmt.Errorf("HDU %d (%s): %w", hdu, t.Name(), err)
		}
		f.Tables = append(f.Tables, t)
	}
}

// readHeader reads blocks until the END card. It returns io.EOF only when
// the stream ends cleanly before a new header.
func readHeader(r io.Reader) (*Header, error) {
	h := NewHeader()
	block := make([]byte, blockSize)
	for first := true; ; first = false {
		if _, err := io.ReadFull(r, block); err != nil {
			if first && errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("header without END: %w", err)
		}
		for i := 0; i < cardsPerBlock; i++ {
			line := string(block[i*cardLen : (i+1)*cardLen])
			c, err := parseCard(line)
			if err != nil {
				return nil, err
			}
			if c.Key == "END" {
				return h, nil
			}
			if c.Key != "" && c.Value != nil {
				h.cards = append(h.cards, c)
			}
		}
	}
}

// dataSize returns the padded data size declared by a header.
func dataSize(h *Header) (int, error) {
	naxis, err := h.Int("NAXIS")
	if err != nil {
		return 0, err
	}
	if naxis == 0 {
		return 0, nil
	}
	bitpix, err := h.Int("BITPIX")
	if err != nil {
		return 0, err
	}
	if naxis < 0 || naxis > 999 {
		return 0, fmt.Errorf("invalid NAXIS %d", naxis)
	}
	size := int64(1)
	for i := 1; i <= naxis; i++ {
		n, err := h.Int(nth("NAXIS", i))
		if err != nil {
			return 0, err
		}
		if size, err = mulSize(size, n, nth("NAXIS", i)); err != nil {
			return 0, err
		}
	}
	pcount, _ := h.Int("PCOUNT")
	gcount, err := h.Int("GCOUNT")
	if err != nil {
		gcount = 1
	}
	if pcount < 0 {
		return 0, fmt.Errorf("invalid PCOUNT %d", pcount)
	}
	size += int64(pcount)
	if size, err = mulSize(size, gcount, "GCOUNT"); err != nil {
		return 0, err
	}
	if size, err = mulSize(size, abs(bitpix)/8, "BITPIX"); err != nil {
		return 0, err
	}
	if size > maxDataSize {
		return 0, fmt.Errorf("data size %d exceeds %d bytes", size, int64(maxDataSize))
	}
	return (int(size) + blockSize - 1) / blockSize * blockSize, nil
}

// maxDataSize bounds the data unit of one HDU.
const maxDataSize = 1 << 40

// mulSize returns size*n, rejecting negative factors and overflow.
func mulSize(size int64, n int, key string) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %d", key, n)
	}
	if n > 0 && size > math.MaxInt64/int64(n) {
		return 0, fmt.Errorf("%s %d overflows the data size", key, n)
	}
	return size * int64(n), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func skipData(r io.Reader, h *Header) error {
	n, err := dataSize(h)
	if err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
		return fmt.Errorf("truncated data: %w", err)
	}
	return nil
}

func tableFromHeader(h *Header) (*Table, error) {
	tfields, err := h.Int("TFIELDS")
	if err != nil {
		return nil, err
	}
	cols := make([]Column, tfields)
	for i := range cols {
		form := h.String(nth("TFORM", i+1))
		code, repeat, err := parseTForm(form)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		cols[i] = Column{
			Name:   h.String(nth("TTYPE", i+1)),
			Format: code,
			Repeat: repeat,
			Unit:   h.String(nth("TUNIT", i+1)),
		}
	}
	nrows, err := h.Int("NAXIS2")
	if err != nil {
		return nil, err
	}
	if nrows < 0 {
		return nil, fmt.Errorf("invalid NAXIS2 %d", nrows)
	}

	t := &Table{Header: NewHeader(), Columns: cols, NRows: nrows}
	copyCards(t.Header, h)
	if err := t.layout(); err != nil {
		return nil, err
	}
	if width, err := h.Int("NAXIS1"); err != nil || width != t.rowLen {
		return nil, fmt.Errorf("NAXIS1 %d does not match column widths %d", width, t.rowLen)
	}
	return t, nil
}

func readData(r io.Reader, t *Table, h *Header) error {
	n, err := dataSize(h)
	if err != nil {
		return err
	}
	want := t.rowLen * t.NRows
	if want > n {
		return fmt.Errorf("%d rows of %d bytes exceed the declared data size %d", t.NRows, t.rowLen, n)
	}
	// NAXIS2 is untrusted; the buffer grows only as data arrive.
	t.data, err = io.ReadAll(io.LimitReader(r, int64(want)))
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}
	if len(t.data) < want {
		return fmt.Errorf("truncated data: %d of %d bytes", len(t.data), want)
	}
	if _, err := io.CopyN(io.Discard, r, int64(n-want)); err != nil {
		return fmt.Errorf("truncated data: %w", err)
	}
	return nil
}
