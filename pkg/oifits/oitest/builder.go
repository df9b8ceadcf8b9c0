// Package oitest builds small, fully consistent OIFITS datasets for tests.
package oitest

import (
	"fmt"

	"oifits/pkg/oifits"
)

// Config describes the dataset built by New.
type Config struct {
	ArrName   string
	InsName   string
	Nwave     int
	WaveStart float64 // first channel, metres
	WaveStep  float64
	Targets   []string
	MJD       float64 // MJD of the first record; each record adds 0.01
	DateObs   string
	NVis      int
	NVis2     int
	NT3       int
	NFlux     int
	Stations  int
}

// DefaultConfig returns a four-station, five-channel configuration with
// ten records of every data kind referencing one target.
func DefaultConfig() Config {
	return Config{
		ArrName:   "VLTI",
		InsName:   "INS1",
		Nwave:     5,
		WaveStart: 1.5e-6,
		WaveStep:  0.1e-6,
		Targets:   []string{"HD 1234"},
		MJD:       56974.0,
		DateObs:   "2014-11-13",
		NVis:      10,
		NVis2:     10,
		NT3:       10,
		NFlux:     10,
		Stations:  4,
	}
}

// New builds a dataset according to cfg. Target IDs are 1..len(Targets) and
// records cycle through them.
func New(cfg Config) *oifits.Dataset {
	ds := oifits.New()
	ds.Header = oifits.Header{
		Origin:   "TEST",
		Date:     "2014-11-20",
		DateObs:  cfg.DateObs,
		Telescop: "TEST-ARRAY",
		Instrume: cfg.InsName,
		Observer: "Unknown",
		InsMode:  "LOW",
		Object:   "MULTI",
		Content:  "OIFITS2",
	}

	for i, name := range cfg.Targets {
		ds.Targets.Targets = append(ds.Targets.Targets, Target(i+1, name))
	}

	if cfg.ArrName != "" {
		ds.AddArray(Array(cfg.ArrName, cfg.Stations))
	}
	ds.AddWavelength(Wavelength(cfg.InsName, cfg.Nwave, cfg.WaveStart, cfg.WaveStep))

	hdr := oifits.DataHeader{
		Revision: 2,
		DateObs:  cfg.DateObs,
		ArrName:  cfg.ArrName,
		InsName:  cfg.InsName,
		Nwave:    cfg.Nwave,
	}
	target := func(i int) int {
		if len(cfg.Targets) == 0 {
			return 1
		}
		return i%len(cfg.Targets) + 1
	}
	pair := func(i int) (int, int) {
		n := max(cfg.Stations, 2)
		return 1, i%(n-1) + 2
	}

	if cfg.NVis > 0 {
		t := &oifits.VisTable{DataHeader: hdr}
		t.AmpTyp, t.PhiTyp = "absolute", "differential"
		for i := 0; i < cfg.NVis; i++ {
			a, b := pair(i)
			t.Records = append(t.Records, VisRecord(target(i), cfg.MJD+0.01*float64(i), a, b, cfg.Nwave))
		}
		ds.Vis = append(ds.Vis, t)
	}
	if cfg.NVis2 > 0 {
		t := &oifits.Vis2Table{DataHeader: hdr}
		for i := 0; i < cfg.NVis2; i++ {
			a, b := pair(i)
			t.Records = append(t.Records, Vis2Record(target(i), cfg.MJD+0.01*float64(i), a, b, cfg.Nwave))
		}
		ds.Vis2 = append(ds.Vis2, t)
	}
	if cfg.NT3 > 0 {
		t := &oifits.T3Table{DataHeader: hdr}
		for i := 0; i < cfg.NT3; i++ {
			t.Records = append(t.Records, T3Record(target(i), cfg.MJD+0.01*float64(i), cfg.Nwave))
		}
		ds.T3 = append(ds.T3, t)
	}
	if cfg.NFlux > 0 {
		fh := hdr
		fh.Revision = 1
		fh.CalStat = "C"
		fh.FOV = 0.1
		fh.FOVType = "RADIUS"
		t := &oifits.FluxTable{DataHeader: fh}
		for i := 0; i < cfg.NFlux; i++ {
			t.Records = append(t.Records, FluxRecord(target(i), cfg.MJD+0.01*float64(i), 1, cfg.Nwave))
		}
		ds.Flux = append(ds.Flux, t)
	}

	ds.RebuildIndex()
	return ds
}

// Default builds New(DefaultConfig()).
func Default() *oifits.Dataset {
	return New(DefaultConfig())
}

// Target returns a target with coordinates derived from id.
func Target(id int, name string) oifits.Target {
	return oifits.Target{
		ID:       id,
		Name:     name,
		RAEp0:    10.0 * float64(id),
		DecEp0:   -5.0 * float64(id),
		Equinox:  2000.0,
		VelTyp:   "UNKNOWN",
		VelDef:   "OPTICAL",
		SpecTyp:  "G2V",
		Category: "SCI",
	}
}

// Array returns an array of n stations laid out on the x axis, 10 m apart.
func Array(name string, n int) *oifits.Array {
	a := &oifits.Array{
		Revision: 2,
		ArrName:  name,
		Frame:    "GEOCENTRIC",
		ArrayXYZ: [3]float64{1942014.1, -5455311.2, -2654530.4},
	}
	for i := 1; i <= n; i++ {
		a.Elements = append(a.Elements, oifits.Element{
			TelName:  fmt.Sprintf("T%d", i),
			StaName:  fmt.Sprintf("S%d", i),
			StaIndex: i,
			Diameter: 1.8,
			StaXYZ:   [3]float64{10 * float64(i), 0, 0},
			FOV:      1.0,
			FOVType:  "FWHM",
		})
	}
	return a
}

// Wavelength returns an evenly spaced channel grid.
func Wavelength(name string, nwave int, start, step float64) *oifits.Wavelength {
	w := &oifits.Wavelength{Revision: 2, InsName: name}
	for i := 0; i < nwave; i++ {
		w.EffWave = append(w.EffWave, float32(start+step*float64(i)))
		w.EffBand = append(w.EffBand, float32(step))
	}
	return w
}

// Corr returns a correlation table with a single off-diagonal entry.
func Corr(name string, ndata int) *oifits.Corr {
	return &oifits.Corr{
		Revision: 1,
		CorrName: name,
		Ndata:    ndata,
		IIndx:    []int{1},
		JIndx:    []int{2},
		Corr:     []float64{0.1},
	}
}

// VisRecord returns a record with amplitude SNR 10 and phase error 1 degree
// on baseline (10(b-a), 5(b-a)).
func VisRecord(target int, mjd float64, a, b, nwave int) oifits.VisRecord {
	r := oifits.VisRecord{
		TargetID: target,
		Time:     3600,
		MJD:      mjd,
		IntTime:  10,
		UCoord:   10 * float64(b-a),
		VCoord:   5 * float64(b-a),
		StaIndex: [2]int{a, b},
	}
	for i := 0; i < nwave; i++ {
		r.VisAmp = append(r.VisAmp, 0.5)
		r.VisAmpErr = append(r.VisAmpErr, 0.05)
		r.VisPhi = append(r.VisPhi, 10)
		r.VisPhiErr = append(r.VisPhiErr, 1)
		r.Flag = append(r.Flag, false)
	}
	return r
}

// Vis2Record returns a record with SNR 25.
func Vis2Record(target int, mjd float64, a, b, nwave int) oifits.Vis2Record {
	r := oifits.Vis2Record{
		TargetID: target,
		Time:     3600,
		MJD:      mjd,
		IntTime:  10,
		UCoord:   10 * float64(b-a),
		VCoord:   5 * float64(b-a),
		StaIndex: [2]int{a, b},
	}
	for i := 0; i < nwave; i++ {
		r.Vis2Data = append(r.Vis2Data, 0.25)
		r.Vis2Err = append(r.Vis2Err, 0.01)
		r.Flag = append(r.Flag, false)
	}
	return r
}

// T3Record returns a record on stations 1,2,3 with amplitude SNR 10.
func T3Record(target int, mjd float64, nwave int) oifits.T3Record {
	r := oifits.T3Record{
		TargetID: target,
		Time:     3600,
		MJD:      mjd,
		IntTime:  10,
		U1Coord:  10,
		V1Coord:  5,
		U2Coord:  10,
		V2Coord:  5,
		StaIndex: [3]int{1, 2, 3},
	}
	for i := 0; i < nwave; i++ {
		r.T3Amp = append(r.T3Amp, 0.1)
		r.T3AmpErr = append(r.T3AmpErr, 0.01)
		r.T3Phi = append(r.T3Phi, 5)
		r.T3PhiErr = append(r.T3PhiErr, 2)
		r.Flag = append(r.Flag, false)
	}
	return r
}

// FluxRecord returns a record with SNR 10 measured on one station.
func FluxRecord(target int, mjd float64, sta, nwave int) oifits.FluxRecord {
	r := oifits.FluxRecord{
		TargetID: target,
		MJD:      mjd,
		IntTime:  10,
		StaIndex: []int{sta},
	}
	for i := 0; i < nwave; i++ {
		r.FluxData = append(r.FluxData, 10)
		r.FluxErr = append(r.FluxErr, 1)
		r.Flag = append(r.Flag, false)
	}
	return r
}

// Inspol returns an OI_INSPOL table with one record per target.
func Inspol(arrname, insname string, nwave int, targets ...int) *oifits.Inspol {
	p := &oifits.Inspol{
		Revision: 1,
		DateObs:  "2014-11-13",
		NPol:     2,
		ArrName:  arrname,
		Orient:   "NORTH",
		Model:    "TEST",
	}
	for _, id := range targets {
		r := oifits.InspolRecord{
			TargetID: id,
			InsName:  insname,
			MJDObs:   56974.0,
			MJDEnd:   56974.5,
			StaIndex: 1,
		}
		for i := 0; i < nwave; i++ {
			r.JXX = append(r.JXX, complex(1, 0))
			r.JYY = append(r.JYY, complex(1, 0))
			r.JXY = append(r.JXY, complex(0, 0.1))
			r.JYX = append(r.JYX, complex(0, -0.1))
		}
		p.Records = append(p.Records, r)
	}
	return p
}
