package oifits

import (
	"math"
	"slices"
)

// VisRecord is one row of OI_VIS: complex visibility amplitude and phase.
type VisRecord struct {
	TargetID  int
	Time      float64
	MJD       float64
	IntTime   float64
	VisAmp    []float64
	VisAmpErr []float64
	VisPhi    []float64 // degrees
	VisPhiErr []float64 // degrees
	UCoord    float64
	VCoord    float64
	StaIndex  [2]int
	Flag      []bool
}

// Target implements Record.
func (r VisRecord) Target() int                 { return r.TargetID }
func (r VisRecord) WithTarget(id int) VisRecord { r.TargetID = id; return r }
func (r VisRecord) ObsMJD() float64             { return r.MJD }
func (r VisRecord) Stations() []int             { return r.StaIndex[:] }
func (r VisRecord) Channels() int               { return len(r.Flag) }
func (r VisRecord) Flagged(ch int) bool         { return r.Flag[ch] }
func (r VisRecord) SetFlag(ch int)              { r.Flag[ch] = true }
func (r VisRecord) ZeroTime() VisRecord         { r.Time = 0; return r }

func (r VisRecord) Baselines() []Baseline {
	return []Baseline{{r.UCoord, r.VCoord}}
}

func (r VisRecord) AmpSNR(ch int) (float64, bool) {
	return r.VisAmp[ch] / r.VisAmpErr[ch], true
}

func (r VisRecord) PhiSNR(ch int) (float64, bool) {
	return phaseSNR(r.VisPhiErr[ch]), true
}

func (r VisRecord) Select(keep []bool) VisRecord {
	r.VisAmp = selectChannels(r.VisAmp, keep)
	r.VisAmpErr = selectChannels(r.VisAmpErr, keep)
	r.VisPhi = selectChannels(r.VisPhi, keep)
	r.VisPhiErr = selectChannels(r.VisPhiErr, keep)
	r.Flag = selectChannels(r.Flag, keep)
	return r
}

func (r VisRecord) Blank(amp, phi bool) {
	if amp {
		fillNaN(r.VisAmp)
	}
	if phi {
		fillNaN(r.VisPhi)
	}
}

func (r VisRecord) Clone() VisRecord {
	r.VisAmp = slices.Clone(r.VisAmp)
	r.VisAmpErr = slices.Clone(r.VisAmpErr)
	r.VisPhi = slices.Clone(r.VisPhi)
	r.VisPhiErr = slices.Clone(r.VisPhiErr)
	r.Flag = slices.Clone(r.Flag)
	return r
}

// Vis2Record is one row of OI_VIS2: squared visibility.
type Vis2Record struct {
	TargetID int
	Time     float64
	MJD      float64
	IntTime  float64
	Vis2Data []float64
	Vis2Err  []float64
	UCoord   float64
	VCoord   float64
	StaIndex [2]int
	Flag     []bool
}

// Target implements Record.
func (r Vis2Record) Target() int                  { return r.TargetID }
func (r Vis2Record) WithTarget(id int) Vis2Record { r.TargetID = id; return r }
func (r Vis2Record) ObsMJD() float64              { return r.MJD }
func (r Vis2Record) Stations() []int              { return r.StaIndex[:] }
func (r Vis2Record) Channels() int                { return len(r.Flag) }
func (r Vis2Record) Flagged(ch int) bool          { return r.Flag[ch] }
func (r Vis2Record) SetFlag(ch int)               { r.Flag[ch] = true }
func (r Vis2Record) ZeroTime() Vis2Record         { r.Time = 0; return r }

func (r Vis2Record) Baselines() []Baseline {
	return []Baseline{{r.UCoord, r.VCoord}}
}

func (r Vis2Record) AmpSNR(ch int) (float64, bool) {
	return r.Vis2Data[ch] / r.Vis2Err[ch], true
}

func (r Vis2Record) PhiSNR(int) (float64, bool) {
	return math.NaN(), false
}

func (r Vis2Record) Select(keep []bool) Vis2Record {
	r.Vis2Data = selectChannels(r.Vis2Data, keep)
	r.Vis2Err = selectChannels(r.Vis2Err, keep)
	r.Flag = selectChannels(r.Flag, keep)
	return r
}

func (r Vis2Record) Blank(amp, _ bool) {
	if amp {
		fillNaN(r.Vis2Data)
	}
}

func (r Vis2Record) Clone() Vis2Record {
	r.Vis2Data = slices.Clone(r.Vis2Data)
	r.Vis2Err = slices.Clone(r.Vis2Err)
	r.Flag = slices.Clone(r.Flag)
	return r
}

// T3Record is one row of OI_T3: triple product amplitude and closure phase.
type T3Record struct {
	TargetID int
	Time     float64
	MJD      float64
	IntTime  float64
	T3Amp    []float64
	T3AmpErr []float64
	T3Phi    []float64 // degrees
	T3PhiErr []float64 // degrees
	U1Coord  float64
	V1Coord  float64
	U2Coord  float64
	V2Coord  float64
	StaIndex [3]int
	Flag     []bool
}

// Target implements Record.
func (r T3Record) Target() int                { return r.TargetID }
func (r T3Record) WithTarget(id int) T3Record { r.TargetID = id; return r }
func (r T3Record) ObsMJD() float64            { return r.MJD }
func (r T3Record) Stations() []int            { return r.StaIndex[:] }
func (r T3Record) Channels() int              { return len(r.Flag) }
func (r T3Record) Flagged(ch int) bool        { return r.Flag[ch] }
func (r T3Record) SetFlag(ch int)             { r.Flag[ch] = true }
func (r T3Record) ZeroTime() T3Record         { r.Time = 0; return r }

// Baselines returns the legs AB, BC and AC of the closed triangle.
func (r T3Record) Baselines() []Baseline {
	return []Baseline{
		{r.U1Coord, r.V1Coord},
		{r.U2Coord, r.V2Coord},
		{r.U1Coord + r.U2Coord, r.V1Coord + r.V2Coord},
	}
}

func (r T3Record) AmpSNR(ch int) (float64, bool) {
	return r.T3Amp[ch] / r.T3AmpErr[ch], true
}

func (r T3Record) PhiSNR(ch int) (float64, bool) {
	return phaseSNR(r.T3PhiErr[ch]), true
}

func (r T3Record) Select(keep []bool) T3Record {
	r.T3Amp = selectChannels(r.T3Amp, keep)
	r.T3AmpErr = selectChannels(r.T3AmpErr, keep)
	r.T3Phi = selectChannels(r.T3Phi, keep)
	r.T3PhiErr = selectChannels(r.T3PhiErr, keep)
	r.Flag = selectChannels(r.Flag, keep)
	return r
}

func (r T3Record) Blank(amp, phi bool) {
	if amp {
		fillNaN(r.T3Amp)
	}
	if phi {
		fillNaN(r.T3Phi)
	}
}

func (r T3Record) Clone() T3Record {
	r.T3Amp = slices.Clone(r.T3Amp)
	r.T3AmpErr = slices.Clone(r.T3AmpErr)
	r.T3Phi = slices.Clone(r.T3Phi)
	r.T3PhiErr = slices.Clone(r.T3PhiErr)
	r.Flag = slices.Clone(r.Flag)
	return r
}

// FluxRecord is one row of OI_FLUX. StaIndex is empty for calibrated
// spectra not tied to a single telescope.
type FluxRecord struct {
	TargetID int
	MJD      float64
	IntTime  float64
	FluxData []float64
	FluxErr  []float64
	StaIndex []int
	Flag     []bool
}

// Target implements Record.
func (r FluxRecord) Target() int                  { return r.TargetID }
func (r FluxRecord) WithTarget(id int) FluxRecord { r.TargetID = id; return r }
func (r FluxRecord) ObsMJD() float64              { return r.MJD }
func (r FluxRecord) Stations() []int              { return r.StaIndex }
func (r FluxRecord) Baselines() []Baseline        { return nil }
func (r FluxRecord) Channels() int                { return len(r.Flag) }
func (r FluxRecord) Flagged(ch int) bool          { return r.Flag[ch] }
func (r FluxRecord) SetFlag(ch int)               { r.Flag[ch] = true }

// ZeroTime is a no-op: OI_FLUX has no TIME column.
func (r FluxRecord) ZeroTime() FluxRecord { return r }

func (r FluxRecord) AmpSNR(ch int) (float64, bool) {
	return r.FluxData[ch] / r.FluxErr[ch], true
}

func (r FluxRecord) PhiSNR(int) (float64, bool) {
	return math.NaN(), false
}

func (r FluxRecord) Select(keep []bool) FluxRecord {
	r.FluxData = selectChannels(r.FluxData, keep)
	r.FluxErr = selectChannels(r.FluxErr, keep)
	r.Flag = selectChannels(r.Flag, keep)
	r.StaIndex = slices.Clone(r.StaIndex)
	return r
}

func (r FluxRecord) Blank(amp, _ bool) {
	if amp {
		fillNaN(r.FluxData)
	}
}

func (r FluxRecord) Clone() FluxRecord {
	r.FluxData = slices.Clone(r.FluxData)
	r.FluxErr = slices.Clone(r.FluxErr)
	r.StaIndex = slices.Clone(r.StaIndex)
	r.Flag = slices.Clone(r.Flag)
	return r
}

func fillNaN(s []float64) {
	for i := range s {
		s[i] = math.NaN()
	}
}
