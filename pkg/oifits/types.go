package oifits

import "slices"

// MaxNameLen is the longest ARRNAME/INSNAME/CORRNAME that fits a FITS
// string keyword value.
const MaxNameLen = 68

// Extension names of the OIFITS tables.
const (
	ExtTarget     = "OI_TARGET"
	ExtArray      = "OI_ARRAY"
	ExtWavelength = "OI_WAVELENGTH"
	ExtCorr       = "OI_CORR"
	ExtInspol     = "OI_INSPOL"
	ExtVis        = "OI_VIS"
	ExtVis2       = "OI_VIS2"
	ExtT3         = "OI_T3"
	ExtFlux       = "OI_FLUX"
)

// Kind identifies a data-table variant.
type Kind int

const (
	KindVis Kind = iota
	KindVis2
	KindT3
	KindFlux
	KindInspol
)

func (k Kind) String() string {
	switch k {
	case KindVis:
		return ExtVis
	case KindVis2:
		return ExtVis2
	case KindT3:
		return ExtT3
	case KindFlux:
		return ExtFlux
	case KindInspol:
		return ExtInspol
	default:
		return "UNKNOWN"
	}
}

// Header holds the free-text provenance keywords of the primary HDU.
type Header struct {
	Origin   string
	Date     string
	DateObs  string
	Telescop string
	Instrume string
	Observer string
	InsMode  string
	Object   string
	Referenc string
	Author   string
	ProgID   string
	ProcSoft string
	ObsTech  string
	Content  string
}

// Fields returns pointers to every scalar header field, keyed by FITS
// keyword, in a fixed order. DATE-OBS is included.
func (h *Header) Fields() []HeaderField {
	return []HeaderField{
		{"ORIGIN", &h.Origin},
		{"DATE", &h.Date},
		{"DATE-OBS", &h.DateObs},
		{"TELESCOP", &h.Telescop},
		{"INSTRUME", &h.Instrume},
		{"OBSERVER", &h.Observer},
		{"INSMODE", &h.InsMode},
		{"OBJECT", &h.Object},
		{"REFERENC", &h.Referenc},
		{"AUTHOR", &h.Author},
		{"PROG_ID", &h.ProgID},
		{"PROCSOFT", &h.ProcSoft},
		{"OBSTECH", &h.ObsTech},
		{"CONTENT", &h.Content},
	}
}

// HeaderField binds a primary-header keyword to its storage.
type HeaderField struct {
	Keyword string
	Value   *string
}

// Target is one row of OI_TARGET.
type Target struct {
	ID       int
	Name     string
	RAEp0    float64
	DecEp0   float64
	Equinox  float64
	RAErr    float64
	DecErr   float64
	SysVel   float64
	VelTyp   string
	VelDef   string
	PMRA     float64
	PMDec    float64
	PMRAErr  float64
	PMDecErr float64
	Parallax float64
	ParaErr  float64
	SpecTyp  string
	Category string
}

// TargetTable is the OI_TARGET table of a dataset.
type TargetTable struct {
	Revision int
	Targets  []Target
}

// Clone returns a deep copy.
func (t TargetTable) Clone() TargetTable {
	return TargetTable{Revision: t.Revision, Targets: slices.Clone(t.Targets)}
}

// Element is one telescope/station of an OI_ARRAY.
type Element struct {
	TelName  string
	StaName  string
	StaIndex int
	Diameter float64
	StaXYZ   [3]float64
	FOV      float64
	FOVType  string
}

// Array is an OI_ARRAY table.
type Array struct {
	Revision int
	ArrName  string
	Frame    string
	ArrayXYZ [3]float64
	Elements []Element
}

// Element returns the element with the given station index, or nil.
// Elements are not assumed sorted.
func (a *Array) Element(staIndex int) *Element {
	for i := range a.Elements {
		if a.Elements[i].StaIndex == staIndex {
			return &a.Elements[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	c := *a
	c.Elements = slices.Clone(a.Elements)
	return &c
}

// Wavelength is an OI_WAVELENGTH table.
type Wavelength struct {
	Revision int
	InsName  string
	EffWave  []float32
	EffBand  []float32
}

// Nwave returns the number of spectral channels.
func (w *Wavelength) Nwave() int {
	return len(w.EffWave)
}

// Clone returns a deep copy.
func (w *Wavelength) Clone() *Wavelength {
	return &Wavelength{
		Revision: w.Revision,
		InsName:  w.InsName,
		EffWave:  slices.Clone(w.EffWave),
		EffBand:  slices.Clone(w.EffBand),
	}
}

// Select returns a copy holding only the channels where keep is true.
func (w *Wavelength) Select(keep []bool) *Wavelength {
	return &Wavelength{
		Revision: w.Revision,
		InsName:  w.InsName,
		EffWave:  selectChannels(w.EffWave, keep),
		EffBand:  selectChannels(w.EffBand, keep),
	}
}

// Corr is an OI_CORR table: a sparse list of off-diagonal correlations
// among Ndata data values. Indices are 1-based as in the file.
type Corr struct {
	Revision int
	CorrName string
	Ndata    int
	IIndx    []int
	JIndx    []int
	Corr     []float64
}

// Clone returns a deep copy.
func (c *Corr) Clone() *Corr {
	return &Corr{
		Revision: c.Revision,
		CorrName: c.CorrName,
		Ndata:    c.Ndata,
		IIndx:    slices.Clone(c.IIndx),
		JIndx:    slices.Clone(c.JIndx),
		Corr:     slices.Clone(c.Corr),
	}
}

// InspolRecord is one row of OI_INSPOL. Unlike the other data tables the
// wavelength reference is per record.
type InspolRecord struct {
	TargetID int
	InsName  string
	MJDObs   float64
	MJDEnd   float64
	JXX      []complex64
	JYY      []complex64
	JXY      []complex64
	JYX      []complex64
	StaIndex int
}

// Clone returns a deep copy.
func (r InspolRecord) Clone() InspolRecord {
	r.JXX = slices.Clone(r.JXX)
	r.JYY = slices.Clone(r.JYY)
	r.JXY = slices.Clone(r.JXY)
	r.JYX = slices.Clone(r.JYX)
	return r
}

// Select returns a copy holding only the channels where keep is true.
func (r InspolRecord) Select(keep []bool) InspolRecord {
	r.JXX = selectChannels(r.JXX, keep)
	r.JYY = selectChannels(r.JYY, keep)
	r.JXY = selectChannels(r.JXY, keep)
	r.JYX = selectChannels(r.JYX, keep)
	return r
}

// Inspol is an OI_INSPOL table (instrumental polarisation).
type Inspol struct {
	Revision int
	DateObs  string
	NPol     int
	ArrName  string
	Orient   string
	Model    string
	Records  []InspolRecord
}

// Nwave returns the widest record's channel count.
func (p *Inspol) Nwave() int {
	n := 0
	for _, r := range p.Records {
		n = max(n, len(r.JXX))
	}
	return n
}

// Clone returns a deep copy.
func (p *Inspol) Clone() *Inspol {
	c := *p
	c.Records = make([]InspolRecord, len(p.Records))
	for i, r := range p.Records {
		c.Records[i] = r.Clone()
	}
	return &c
}

// selectChannels copies the elements of s where keep is true. keep may be
// shorter than s; missing entries count as false.
func selectChannels[T any](s []T, keep []bool) []T {
	if s == nil {
		return nil
	}
	out := make([]T, 0, len(s))
	for i, v := range s {
		if i < len(keep) && keep[i] {
			out = append(out, v)
		}
	}
	return out
}
