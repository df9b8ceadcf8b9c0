package oiio

import (
	"fmt"

	"oifits/pkg/fitsio"
	"oifits/pkg/oifits"
	"oifits/pkg/utils/functools"
)

// toFile lays the dataset out as FITS tables in writer order: target,
// arrays, wavelengths, correlations, polarisation, then the data tables.
// EXTVER counts from 1 within each extension name.
func toFile(ds *oifits.Dataset) (*fitsio.File, error) {
	f := &fitsio.File{Primary: encodePrimary(ds.Header)}
	extver := make(map[string]int)
	add := func(t *fitsio.Table, err error) error {
		if err != nil {
			return err
		}
		name := t.Name()
		extver[name]++
		t.Header.Set("EXTVER", extver[name], "")
		f.Tables = append(f.Tables, t)
		return nil
	}

	if err := add(encodeTarget(ds.Targets)); err != nil {
		return nil, fmt.Errorf("%s: %w", oifits.ExtTarget, err)
	}
	for _, a := range ds.Arrays {
		if err := add(encodeArray(a)); err != nil {
			return nil, fmt.Errorf("%s %s: %w", oifits.ExtArray, a.ArrName, err)
		}
	}
	for _, w := range ds.Wavelengths {
		if err := add(encodeWavelength(w)); err != nil {
			return nil, fmt.Errorf("%s %s: %w", oifits.ExtWavelength, w.InsName, err)
		}
	}
	for _, c := range ds.Corrs {
		if err := add(encodeCorr(c)); err != nil {
			return nil, fmt.Errorf("%s %s: %w", oifits.ExtCorr, c.CorrName, err)
		}
	}
	for _, p := range ds.Inspols {
		if err := add(encodeInspol(p)); err != nil {
			return nil, fmt.Errorf("%s %s: %w", oifits.ExtInspol, p.ArrName, err)
		}
	}
	if err := encodeAll(add, oifits.ExtVis, ds.Vis, visLayout); err != nil {
		return nil, err
	}
	if err := encodeAll(add, oifits.ExtVis2, ds.Vis2, vis2Layout); err != nil {
		return nil, err
	}
	if err := encodeAll(add, oifits.ExtT3, ds.T3, t3Layout); err != nil {
		return nil, err
	}
	if err := encodeAll(add, oifits.ExtFlux, ds.Flux, fluxLayout); err != nil {
		return nil, err
	}
	return f, nil
}

func encodePrimary(h oifits.Header) *fitsio.Header {
	out := fitsio.NewHeader()
	for _, f := range h.Fields() {
		if *f.Value != "" {
			out.Set(f.Keyword, *f.Value, "")
		}
	}
	return out
}

func encodeTarget(tt oifits.TargetTable) (*fitsio.Table, error) {
	names := functools.Map(tt.Targets, func(t oifits.Target) string { return t.Name })
	cols := []fitsio.Column{
		col(colTargetID, 'I', 1, ""),
		col("TARGET", 'A', strWidth(16, names...), ""),
		col("RAEP0", 'D', 1, "deg"),
		col("DECEP0", 'D', 1, "deg"),
		col("EQUINOX", 'D', 1, "yr"),
		col("RA_ERR", 'D', 1, "deg"),
		col("DEC_ERR", 'D', 1, "deg"),
		col("SYSVEL", 'D', 1, "m/s"),
		col("VELTYP", 'A', 8, ""),
		col("VELDEF", 'A', 8, ""),
		col("PMRA", 'D', 1, "deg/yr"),
		col("PMDEC", 'D', 1, "deg/yr"),
		col("PMRA_ERR", 'D', 1, "deg/yr"),
		col("PMDEC_ERR", 'D', 1, "deg/yr"),
		col("PARALLAX", 'D', 1, "deg"),
		col("PARA_ERR", 'D', 1, "deg"),
		col("SPECTYP", 'A', 16, ""),
	}
	if tt.Revision >= 2 {
		cols = append(cols, col("CATEGORY", 'A', 3, ""))
	}
	t, err := newTable(oifits.ExtTarget, tt.Revision, cols, len(tt.Targets))
	if err != nil {
		return nil, err
	}
	for i, tg := range tt.Targets {
		w := rowWriter{t: t, row: i}
		w.int(colTargetID, tg.ID)
		w.str("TARGET", tg.Name)
		w.float("RAEP0", tg.RAEp0)
		w.float("DECEP0", tg.DecEp0)
		w.float("EQUINOX", tg.Equinox)
		w.float("RA_ERR", tg.RAErr)
		w.float("DEC_ERR", tg.DecErr)
		w.float("SYSVEL", tg.SysVel)
		w.str("VELTYP", tg.VelTyp)
		w.str("VELDEF", tg.VelDef)
		w.float("PMRA", tg.PMRA)
		w.float("PMDEC", tg.PMDec)
		w.float("PMRA_ERR", tg.PMRAErr)
		w.float("PMDEC_ERR", tg.PMDecErr)
		w.float("PARALLAX", tg.Parallax)
		w.float("PARA_ERR", tg.ParaErr)
		w.str("SPECTYP", tg.SpecTyp)
		if tt.Revision >= 2 {
			w.str("CATEGORY", tg.Category)
		}
		if w.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, w.err)
		}
	}
	return t, nil
}

func encodeArray(a *oifits.Array) (*fitsio.Table, error) {
	cols := []fitsio.Column{
		col("TEL_NAME", 'A', 16, ""),
		col("STA_NAME", 'A', 16, ""),
		col(colStaIndex, 'I', 1, ""),
		col("DIAMETER", 'D', 1, "m"),
		col("STAXYZ", 'D', 3, "m"),
	}
	if a.Revision >= 2 {
		cols = append(cols, col("FOV", 'D', 1, "arcsec"), col("FOVTYPE", 'A', 6, ""))
	}
	t, err := newTable(oifits.ExtArray, a.Revision, cols, len(a.Elements))
	if err != nil {
		return nil, err
	}
	t.Header.Set("ARRNAME", a.ArrName, "")
	t.Header.Set("FRAME", a.Frame, "")
	t.Header.Set("ARRAYX", a.ArrayXYZ[0], "")
	t.Header.Set("ARRAYY", a.ArrayXYZ[1], "")
	t.Header.Set("ARRAYZ", a.ArrayXYZ[2], "")
	for i, e := range a.Elements {
		w := rowWriter{t: t, row: i}
		w.str("TEL_NAME", e.TelName)
		w.str("STA_NAME", e.StaName)
		w.int(colStaIndex, e.StaIndex)
		w.float("DIAMETER", e.Diameter)
		w.floats("STAXYZ", e.StaXYZ[:])
		if a.Revision >= 2 {
			w.float("FOV", e.FOV)
			w.str("FOVTYPE", e.FOVType)
		}
		if w.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, w.err)
		}
	}
	return t, nil
}

func encodeWavelength(wl *oifits.Wavelength) (*fitsio.Table, error) {
	t, err := newTable(oifits.ExtWavelength, wl.Revision, []fitsio.Column{
		col("EFF_WAVE", 'E', 1, "m"),
		col("EFF_BAND", 'E', 1, "m"),
	}, wl.Nwave())
	if err != nil {
		return nil, err
	}
	t.Header.Set("INSNAME", wl.InsName, "")
	for i := range wl.EffWave {
		w := rowWriter{t: t, row: i}
		w.float32s("EFF_WAVE", wl.EffWave[i:i+1])
		if i < len(wl.EffBand) {
			w.float32s("EFF_BAND", wl.EffBand[i:i+1])
		}
		if w.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, w.err)
		}
	}
	return t, nil
}

func encodeCorr(c *oifits.Corr) (*fitsio.Table, error) {
	if len(c.IIndx) != len(c.Corr) || len(c.JIndx) != len(c.Corr) {
		return nil, fmt.Errorf("IINDX, JINDX and CORR lengths differ: %d, %d, %d",
			len(c.IIndx), len(c.JIndx), len(c.Corr))
	}
	t, err := newTable(oifits.ExtCorr, c.Revision, []fitsio.Column{
		col("IINDX", 'J', 1, ""),
		col("JINDX", 'J', 1, ""),
		col("CORR", 'D', 1, ""),
	}, len(c.Corr))
	if err != nil {
		return nil, err
	}
	t.Header.Set("CORRNAME", c.CorrName, "")
	t.Header.Set("NDATA", c.Ndata, "")
	for i := range c.Corr {
		w := rowWriter{t: t, row: i}
		w.int("IINDX", c.IIndx[i])
		w.int("JINDX", c.JIndx[i])
		w.float("CORR", c.Corr[i])
		if w.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, w.err)
		}
	}
	return t, nil
}

// encodeInspol writes every record with the widest record's channel count;
// shorter records are padded with NaN and trimmed again on read.
func encodeInspol(p *oifits.Inspol) (*fitsio.Table, error) {
	insnames := functools.Map(p.Records, func(r oifits.InspolRecord) string { return r.InsName })
	nwave := p.Nwave()
	t, err := newTable(oifits.ExtInspol, p.Revision, []fitsio.Column{
		col(colTargetID, 'I', 1, ""),
		col("INSNAME", 'A', strWidth(16, insnames...), ""),
		col("MJD_OBS", 'D', 1, "day"),
		col("MJD_END", 'D', 1, "day"),
		col("JXX", 'C', nwave, ""),
		col("JYY", 'C', nwave, ""),
		col("JXY", 'C', nwave, ""),
		col("JYX", 'C', nwave, ""),
		col(colStaIndex, 'I', 1, ""),
	}, len(p.Records))
	if err != nil {
		return nil, err
	}
	t.Header.Set("DATE-OBS", p.DateObs, "")
	t.Header.Set("NPOL", p.NPol, "")
	t.Header.Set("ARRNAME", p.ArrName, "")
	t.Header.Set("ORIENT", p.Orient, "")
	t.Header.Set("MODEL", p.Model, "")
	for i, r := range p.Records {
		w := rowWriter{t: t, row: i}
		w.int(colTargetID, r.TargetID)
		w.str("INSNAME", r.InsName)
		w.float("MJD_OBS", r.MJDObs)
		w.float("MJD_END", r.MJDEnd)
		w.complexes("JXX", r.JXX)
		w.complexes("JYY", r.JYY)
		w.complexes("JXY", r.JXY)
		w.complexes("JYX", r.JYX)
		w.int(colStaIndex, r.StaIndex)
		if w.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, w.err)
		}
	}
	return t, nil
}

// layout describes how one data-table kind maps onto FITS columns.
// The reader checks every column it finds against the widths columns
// would give for the table's NWAVE.
type layout[R oifits.Record[R]] struct {
	columns func(h oifits.DataHeader, records []R) []fitsio.Column
	write   func(w *rowWriter, r R)
	read    func(rd *rowReader) R
}

func encodeAll[R oifits.Record[R]](add func(*fitsio.Table, error) error, ext string,
	tables []*oifits.DataTable[R], l layout[R]) error {
	for _, dt := range tables {
		if err := add(encodeData(ext, dt, l)); err != nil {
			return fmt.Errorf("%s %s: %w", ext, dt.InsName, err)
		}
	}
	return nil
}

func encodeData[R oifits.Record[R]](ext string, dt *oifits.DataTable[R], l layout[R]) (*fitsio.Table, error) {
	t, err := newTable(ext, dt.Revision, l.columns(dt.DataHeader, dt.Records), len(dt.Records))
	if err != nil {
		return nil, err
	}
	setDataHeader(t.Header, ext, dt.DataHeader)
	for i, r := range dt.Records {
		w := rowWriter{t: t, row: i}
		l.write(&w, r)
		if w.err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, w.err)
		}
	}
	return t, nil
}

func setDataHeader(h *fitsio.Header, ext string, dh oifits.DataHeader) {
	h.Set("DATE-OBS", dh.DateObs, "")
	if dh.ArrName != "" {
		h.Set("ARRNAME", dh.ArrName, "")
	}
	h.Set("INSNAME", dh.InsName, "")
	if dh.CorrName != "" {
		h.Set("CORRNAME", dh.CorrName, "")
	}
	switch ext {
	case oifits.ExtVis:
		if dh.AmpTyp != "" {
			h.Set("AMPTYP", dh.AmpTyp, "")
		}
		if dh.PhiTyp != "" {
			h.Set("PHITYP", dh.PhiTyp, "")
		}
		if dh.AmpOrder != 0 {
			h.Set("AMPORDER", dh.AmpOrder, "")
		}
		if dh.PhiOrder != 0 {
			h.Set("PHIORDER", dh.PhiOrder, "")
		}
	case oifits.ExtFlux:
		if dh.FOV != 0 {
			h.Set("FOV", dh.FOV, "arcsec")
		}
		if dh.FOVType != "" {
			h.Set("FOVTYPE", dh.FOVType, "")
		}
		h.Set("CALSTAT", dh.CalStat, "")
	}
}

func newTable(ext string, revision int, cols []fitsio.Column, nrows int) (*fitsio.Table, error) {
	t, err := fitsio.NewTable(ext, cols, nrows)
	if err != nil {
		return nil, err
	}
	t.Header.Set("OI_REVN", revision, "revision of the table definition")
	return t, nil
}

// timeColumns are the leading columns of OI_VIS, OI_VIS2 and OI_T3.
func timeColumns() []fitsio.Column {
	return []fitsio.Column{
		col(colTargetID, 'I', 1, ""),
		col(colTime, 'D', 1, "s"),
		col(colMJD, 'D', 1, "day"),
		col(colIntTime, 'D', 1, "s"),
	}
}

var visLayout = layout[oifits.VisRecord]{
	columns: func(h oifits.DataHeader, _ []oifits.VisRecord) []fitsio.Column {
		return append(timeColumns(),
			col("VISAMP", 'D', h.Nwave, ""),
			col("VISAMPERR", 'D', h.Nwave, ""),
			col("VISPHI", 'D', h.Nwave, "deg"),
			col("VISPHIERR", 'D', h.Nwave, "deg"),
			col(colUCoord, 'D', 1, "m"),
			col(colVCoord, 'D', 1, "m"),
			col(colStaIndex, 'I', 2, ""),
			col(colFlag, 'L', h.Nwave, ""),
		)
	},
	write: func(w *rowWriter, r oifits.VisRecord) {
		w.int(colTargetID, r.TargetID)
		w.float(colTime, r.Time)
		w.float(colMJD, r.MJD)
		w.float(colIntTime, r.IntTime)
		w.floats("VISAMP", r.VisAmp)
		w.floats("VISAMPERR", r.VisAmpErr)
		w.floats("VISPHI", r.VisPhi)
		w.floats("VISPHIERR", r.VisPhiErr)
		w.float(colUCoord, r.UCoord)
		w.float(colVCoord, r.VCoord)
		w.ints(colStaIndex, r.StaIndex[:])
		w.bools(colFlag, r.Flag)
	},
	read: func(rd *rowReader) oifits.VisRecord {
		r := oifits.VisRecord{
			TargetID:  rd.int(colTargetID),
			Time:      rd.optFloat(colTime, 0),
			MJD:       rd.float(colMJD),
			IntTime:   rd.float(colIntTime),
			VisAmp:    rd.floats("VISAMP"),
			VisAmpErr: rd.floats("VISAMPERR"),
			VisPhi:    rd.floats("VISPHI"),
			VisPhiErr: rd.floats("VISPHIERR"),
			UCoord:    rd.float(colUCoord),
			VCoord:    rd.float(colVCoord),
			Flag:      rd.bools(colFlag),
		}
		copy(r.StaIndex[:], rd.ints(colStaIndex))
		return r
	},
}

var vis2Layout = layout[oifits.Vis2Record]{
	columns: func(h oifits.DataHeader, _ []oifits.Vis2Record) []fitsio.Column {
		return append(timeColumns(),
			col("VIS2DATA", 'D', h.Nwave, ""),
			col("VIS2ERR", 'D', h.Nwave, ""),
			col(colUCoord, 'D', 1, "m"),
			col(colVCoord, 'D', 1, "m"),
			col(colStaIndex, 'I', 2, ""),
			col(colFlag, 'L', h.Nwave, ""),
		)
	},
	write: func(w *rowWriter, r oifits.Vis2Record) {
		w.int(colTargetID, r.TargetID)
		w.float(colTime, r.Time)
		w.float(colMJD, r.MJD)
		w.float(colIntTime, r.IntTime)
		w.floats("VIS2DATA", r.Vis2Data)
		w.floats("VIS2ERR", r.Vis2Err)
		w.float(colUCoord, r.UCoord)
		w.float(colVCoord, r.VCoord)
		w.ints(colStaIndex, r.StaIndex[:])
		w.bools(colFlag, r.Flag)
	},
	read: func(rd *rowReader) oifits.Vis2Record {
		r := oifits.Vis2Record{
			TargetID: rd.int(colTargetID),
			Time:     rd.optFloat(colTime, 0),
			MJD:      rd.float(colMJD),
			IntTime:  rd.float(colIntTime),
			Vis2Data: rd.floats("VIS2DATA"),
			Vis2Err:  rd.floats("VIS2ERR"),
			UCoord:   rd.float(colUCoord),
			VCoord:   rd.float(colVCoord),
			Flag:     rd.bools(colFlag),
		}
		copy(r.StaIndex[:], rd.ints(colStaIndex))
		return r
	},
}

var t3Layout = layout[oifits.T3Record]{
	columns: func(h oifits.DataHeader, _ []oifits.T3Record) []fitsio.Column {
		return append(timeColumns(),
			col("T3AMP", 'D', h.Nwave, ""),
			col("T3AMPERR", 'D', h.Nwave, ""),
			col("T3PHI", 'D', h.Nwave, "deg"),
			col("T3PHIERR", 'D', h.Nwave, "deg"),
			col("U1COORD", 'D', 1, "m"),
			col("V1COORD", 'D', 1, "m"),
			col("U2COORD", 'D', 1, "m"),
			col("V2COORD", 'D', 1, "m"),
			col(colStaIndex, 'I', 3, ""),
			col(colFlag, 'L', h.Nwave, ""),
		)
	},
	write: func(w *rowWriter, r oifits.T3Record) {
		w.int(colTargetID, r.TargetID)
		w.float(colTime, r.Time)
		w.float(colMJD, r.MJD)
		w.float(colIntTime, r.IntTime)
		w.floats("T3AMP", r.T3Amp)
		w.floats("T3AMPERR", r.T3AmpErr)
		w.floats("T3PHI", r.T3Phi)
		w.floats("T3PHIERR", r.T3PhiErr)
		w.float("U1COORD", r.U1Coord)
		w.float("V1COORD", r.V1Coord)
		w.float("U2COORD", r.U2Coord)
		w.float("V2COORD", r.V2Coord)
		w.ints(colStaIndex, r.StaIndex[:])
		w.bools(colFlag, r.Flag)
	},
	read: func(rd *rowReader) oifits.T3Record {
		r := oifits.T3Record{
			TargetID: rd.int(colTargetID),
			Time:     rd.optFloat(colTime, 0),
			MJD:      rd.float(colMJD),
			IntTime:  rd.float(colIntTime),
			T3Amp:    rd.floats("T3AMP"),
			T3AmpErr: rd.floats("T3AMPERR"),
			T3Phi:    rd.floats("T3PHI"),
			T3PhiErr: rd.floats("T3PHIERR"),
			U1Coord:  rd.float("U1COORD"),
			V1Coord:  rd.float("V1COORD"),
			U2Coord:  rd.float("U2COORD"),
			V2Coord:  rd.float("V2COORD"),
			Flag:     rd.bools(colFlag),
		}
		copy(r.StaIndex[:], rd.ints(colStaIndex))
		return r
	},
}

// fluxLayout writes STA_INDEX only when some record carries a station;
// records without one are written as 0.
var fluxLayout = layout[oifits.FluxRecord]{
	columns: func(h oifits.DataHeader, records []oifits.FluxRecord) []fitsio.Column {
		cols := []fitsio.Column{
			col(colTargetID, 'I', 1, ""),
			col(colMJD, 'D', 1, "day"),
			col(colIntTime, 'D', 1, "s"),
			col("FLUXDATA", 'D', h.Nwave, ""),
			col("FLUXERR", 'D', h.Nwave, ""),
		}
		if fluxHasStations(records) {
			cols = append(cols, col(colStaIndex, 'I', 1, ""))
		}
		return append(cols, col(colFlag, 'L', h.Nwave, ""))
	},
	write: func(w *rowWriter, r oifits.FluxRecord) {
		w.int(colTargetID, r.TargetID)
		w.float(colMJD, r.MJD)
		w.float(colIntTime, r.IntTime)
		w.floats("FLUXDATA", r.FluxData)
		w.floats("FLUXERR", r.FluxErr)
		if w.t.Col(colStaIndex) >= 0 {
			w.ints(colStaIndex, r.StaIndex)
		}
		w.bools(colFlag, r.Flag)
	},
	read: func(rd *rowReader) oifits.FluxRecord {
		r := oifits.FluxRecord{
			TargetID: rd.int(colTargetID),
			MJD:      rd.float(colMJD),
			IntTime:  rd.float(colIntTime),
			FluxData: rd.floats("FLUXDATA"),
			FluxErr:  rd.floats("FLUXERR"),
			Flag:     rd.bools(colFlag),
		}
		// STA_INDEX 0 marks a record without a station.
		if rd.has(colStaIndex) {
			if s := rd.ints(colStaIndex); len(s) > 0 && s[0] > 0 {
				r.StaIndex = s
			}
		}
		return r
	},
}

func fluxHasStations(records []oifits.FluxRecord) bool {
	return functools.Count(records, func(r oifits.FluxRecord) bool { return len(r.StaIndex) > 0 }) > 0
}
