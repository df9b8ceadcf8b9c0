package iterator

import (
	"fmt"
	"math"

	"oifits/pkg/filter"
	"oifits/pkg/oifits"
)

// Point is one (record, channel) datum of a data table.
type Point[R oifits.Record[R]] struct {
	Table       *oifits.DataTable[R]
	TableIndex  int // position in the iterated table list, from 0
	Record      R
	RecordIndex int
	Channel     int
	EffWave     float64 // metres, NaN if INSNAME does not resolve
	EffBand     float64
	Flagged     bool
}

// PointIterator visits every point of one table kind in table order, then
// record order, then channel order.
//
// When built with a filter spec the iterator walks the dataset that
// filter.Apply would produce: tables, records and channels rejected by the
// spec are never visited, points flagged by the UV radius or SNR gates
// carry Flagged, and with AcceptFlagged false flagged points are skipped.
// Indices then refer to that filtered view. The dataset must not be
// modified during iteration.
type PointIterator[R oifits.Record[R]] struct {
	ds          *oifits.Dataset
	tables      []*oifits.DataTable[R]
	skipFlagged bool

	// cursor of the next candidate point
	ti, ri, ch int
	next       *Point[R]
}

var _ Iterator[Point[oifits.VisRecord]] = (*PointIterator[oifits.VisRecord])(nil)

// NewVisIterator iterates over the OI_VIS points of ds. spec may be nil.
func NewVisIterator(ds *oifits.Dataset, spec *filter.Spec) (*PointIterator[oifits.VisRecord], error) {
	return newPointIterator(ds, spec, func(d *oifits.Dataset) []*oifits.VisTable { return d.Vis })
}

// NewVis2Iterator iterates over the OI_VIS2 points of ds. spec may be nil.
func NewVis2Iterator(ds *oifits.Dataset, spec *filter.Spec) (*PointIterator[oifits.Vis2Record], error) {
	return newPointIterator(ds, spec, func(d *oifits.Dataset) []*oifits.Vis2Table { return d.Vis2 })
}

// NewT3Iterator iterates over the OI_T3 points of ds. spec may be nil.
func NewT3Iterator(ds *oifits.Dataset, spec *filter.Spec) (*PointIterator[oifits.T3Record], error) {
	return newPointIterator(ds, spec, func(d *oifits.Dataset) []*oifits.T3Table { return d.T3 })
}

func newPointIterator[R oifits.Record[R]](ds *oifits.Dataset, spec *filter.Spec,
	tables func(*oifits.Dataset) []*oifits.DataTable[R]) (*PointIterator[R], error) {

	it := &PointIterator[R]{ds: ds}
	if spec != nil {
		view, err := filter.Apply(ds, *spec)
		if err != nil {
			return nil, fmt.Errorf("iterator filter: %w", err)
		}
		it.ds = view
		it.skipFlagged = !spec.AcceptFlagged
	}
	it.tables = tables(it.ds)
	it.advance()
	return it, nil
}

// advance moves the cursor to the next visible point and stores it in next.
func (it *PointIterator[R]) advance() {
	it.next = nil
	for it.ti < len(it.tables) {
		t := it.tables[it.ti]
		if it.ri >= len(t.Records) {
			it.ti, it.ri, it.ch = it.ti+1, 0, 0
			continue
		}
		r := t.Records[it.ri]
		if it.ch >= r.Channels() {
			it.ri, it.ch = it.ri+1, 0
			continue
		}

		ch := it.ch
		it.ch++
		if it.skipFlagged && r.Flagged(ch) {
			continue
		}

		p := &Point[R]{
			Table:       t,
			TableIndex:  it.ti,
			Record:      r,
			RecordIndex: it.ri,
			Channel:     ch,
			EffWave:     math.NaN(),
			EffBand:     math.NaN(),
			Flagged:     r.Flagged(ch),
		}
		if w := it.ds.LookupWavelength(t.InsName); w != nil && ch < w.Nwave() {
			p.EffWave = float64(w.EffWave[ch])
			if ch < len(w.EffBand) {
				p.EffBand = float64(w.EffBand[ch])
			}
		}
		it.next = p
		return
	}
}

// HasNext reports whether another point is available.
func (it *PointIterator[R]) HasNext() bool {
	return it.next != nil
}

// Next returns the next point and advances.
func (it *PointIterator[R]) Next() (Point[R], error) {
	if it.next == nil {
		var zero Point[R]
		return zero, fmt.Errorf("no more points in iterator")
	}
	p := *it.next
	it.advance()
	return p, nil
}

// Rewind resets the iterator to the first point.
func (it *PointIterator[R]) Rewind() error {
	it.ti, it.ri, it.ch = 0, 0, 0
	it.advance()
	return nil
}

// Dataset returns the dataset being iterated: the input, or its filtered
// view when a spec was given.
func (it *PointIterator[R]) Dataset() *oifits.Dataset {
	return it.ds
}

// Target resolves the TARGET_ID of p in the iterated dataset.
func (it *PointIterator[R]) Target(p Point[R]) *oifits.Target {
	return it.ds.LookupTarget(p.Record.Target())
}
