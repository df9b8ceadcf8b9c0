package oifits

import "math"

// Baseline is a projected (u,v) baseline vector in metres.
type Baseline struct {
	U, V float64
}

// Length returns the projected baseline length.
func (b Baseline) Length() float64 {
	return math.Hypot(b.U, b.V)
}

// UVRadius returns the spatial frequency of the baseline at wavelength
// (metres), in cycles per radian.
func (b Baseline) UVRadius(wavelength float64) float64 {
	return b.Length() / wavelength
}

// Record is the per-kind shape of a data-table row. Each variant implements
// it on its value type, so that generic code in merge, filter and the
// iterator can copy and rewrite records without knowing the variant, while
// the differences (number of station legs, which components carry an SNR)
// stay explicit in the variant's methods.
//
// Methods returning R return a modified copy; slices of a copy produced by
// Select or Clone are never shared with the receiver.
type Record[R any] interface {
	// Target returns the TARGET_ID foreign key.
	Target() int
	// WithTarget returns a copy referencing another target ID.
	WithTarget(id int) R
	// ObsMJD returns the MJD of the observation.
	ObsMJD() float64
	// Stations returns the STA_INDEX legs (2 for Vis/Vis2, 3 for T3, 0 or 1 for Flux).
	Stations() []int
	// Baselines returns the projected baselines the record depends on:
	// one for Vis/Vis2, the three legs ab, bc, ac for T3, none for Flux.
	Baselines() []Baseline
	// Channels returns the number of spectral channels.
	Channels() int
	// Flagged reports the FLAG of channel ch.
	Flagged(ch int) bool
	// SetFlag raises the FLAG of channel ch.
	SetFlag(ch int)
	// AmpSNR returns amplitude/error for channel ch and whether the kind has
	// an amplitude component.
	AmpSNR(ch int) (float64, bool)
	// PhiSNR returns the phase SNR for channel ch and whether the kind has a
	// phase component.
	PhiSNR(ch int) (float64, bool)
	// Select returns a deep copy holding only the channels where keep is true.
	Select(keep []bool) R
	// Blank sets the amplitude and/or phase values (not errors) to NaN.
	Blank(amp, phi bool)
	// Clone returns a deep copy.
	Clone() R
	// ZeroTime returns a copy with the deprecated TIME column set to zero.
	ZeroTime() R
}

// DataHeader holds the keywords common to every data table, plus the few
// kind-specific ones (unused fields stay zero and are not written).
type DataHeader struct {
	Revision int
	DateObs  string
	ArrName  string
	InsName  string
	CorrName string
	Nwave    int

	// OI_VIS only.
	AmpTyp   string
	PhiTyp   string
	AmpOrder int
	PhiOrder int

	// OI_FLUX only.
	FOV     float64
	FOVType string
	CalStat string
}

// DataTable is one OI_VIS, OI_VIS2, OI_T3 or OI_FLUX table.
type DataTable[R Record[R]] struct {
	DataHeader
	Records []R
}

// Table aliases for each variant.
type (
	VisTable  = DataTable[VisRecord]
	Vis2Table = DataTable[Vis2Record]
	T3Table   = DataTable[T3Record]
	FluxTable = DataTable[FluxRecord]
)

// Clone returns a deep copy of the table.
func (t *DataTable[R]) Clone() *DataTable[R] {
	c := &DataTable[R]{DataHeader: t.DataHeader}
	c.Records = make([]R, len(t.Records))
	for i, r := range t.Records {
		c.Records[i] = r.Clone()
	}
	return c
}

// CountPoints returns the number of (record, channel) data points.
func (t *DataTable[R]) CountPoints() int {
	n := 0
	for _, r := range t.Records {
		n += r.Channels()
	}
	return n
}

// Upgrade converts a revision-1 table to revision 2 in place by zeroing
// TIME. Tables at revision 2 or later are unchanged.
func (t *DataTable[R]) Upgrade() {
	if t.Revision >= 2 {
		return
	}
	for i, r := range t.Records {
		t.Records[i] = r.ZeroTime()
	}
	t.Revision = 2
}

// phaseSNR converts a phase error in degrees into a signal-to-noise ratio,
// 1/sigma with sigma in radians.
func phaseSNR(errDeg float64) float64 {
	return 1.0 / (errDeg * math.Pi / 180.0)
}
