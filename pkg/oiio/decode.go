package oiio

import (
	"fmt"
	"strings"

	oierr "oifits/pkg/error"
	"oifits/pkg/fitsio"
	"oifits/pkg/logging"
	"oifits/pkg/oifits"
)

// fromFile builds a dataset from decoded FITS tables. A missing or
// unreadable OI_TARGET is fatal; any other table that cannot be mapped is
// logged and skipped.
func fromFile(f *fitsio.File) (*oifits.Dataset, error) {
	ds := oifits.New()
	decodePrimary(f.Primary, &ds.Header)

	for _, s := range f.Skipped {
		logging.WithTable(s.ExtName, "").Warn("skipping unreadable table", "hdu", s.Index, "error", s.Err)
	}

	byName := make(map[string][]*fitsio.Table)
	for _, t := range f.Tables {
		name := strings.TrimSpace(t.Name())
		byName[name] = append(byName[name], t)
	}

	targets := byName[oifits.ExtTarget]
	if len(targets) == 0 {
		return nil, oierr.New(oierr.ErrCategoryMalformed, oierr.CodeMissingTarget,
			"no readable OI_TARGET table")
	}
	tt, err := decodeTarget(targets[0])
	if err != nil {
		return nil, oierr.New(oierr.ErrCategoryMalformed, oierr.CodeMissingTarget,
			"unreadable OI_TARGET table").WithDetail("%v", err)
	}
	ds.Targets = tt
	if len(targets) > 1 {
		logging.WithTable(oifits.ExtTarget, "").Warn("ignoring extra OI_TARGET tables", "count", len(targets)-1)
	}

	ds.Arrays = decodeEach(byName[oifits.ExtArray], decodeArray)
	ds.Wavelengths = decodeEach(byName[oifits.ExtWavelength], decodeWavelength)
	ds.Corrs = decodeEach(byName[oifits.ExtCorr], decodeCorr)
	ds.RebuildIndex()

	ds.Inspols = decodeEach(byName[oifits.ExtInspol], func(t *fitsio.Table) (*oifits.Inspol, error) {
		return decodeInspol(t, ds)
	})
	ds.Vis = decodeEach(byName[oifits.ExtVis], dataDecoder(oifits.ExtVis, visLayout))
	ds.Vis2 = decodeEach(byName[oifits.ExtVis2], dataDecoder(oifits.ExtVis2, vis2Layout))
	ds.T3 = decodeEach(byName[oifits.ExtT3], dataDecoder(oifits.ExtT3, t3Layout))
	ds.Flux = decodeEach(byName[oifits.ExtFlux], dataDecoder(oifits.ExtFlux, fluxLayout))

	for name := range byName {
		if !strings.HasPrefix(name, "OI_") {
			logging.Debug("ignoring non-OIFITS table", "extname", name)
		}
	}

	ds.RebuildIndex()
	return ds, nil
}

// decodeEach maps every table with decode, logging and dropping failures.
func decodeEach[T any](tables []*fitsio.Table, decode func(*fitsio.Table) (T, error)) []T {
	var out []T
	for _, t := range tables {
		v, err := decode(t)
		if err != nil {
			logging.WithTable(t.Name(), "").Warn("skipping malformed table",
				"extver", t.Header.String("EXTVER"), "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

func decodePrimary(h *fitsio.Header, out *oifits.Header) {
	for _, f := range out.Fields() {
		*f.Value = h.String(f.Keyword)
	}
}

func revision(t *fitsio.Table) (int, error) {
	rev, err := t.Header.Int("OI_REVN")
	if err != nil {
		return 0, malformed(t, err)
	}
	return rev, nil
}

func malformed(t *fitsio.Table, err error) error {
	return oierr.New(oierr.ErrCategoryMalformed, oierr.CodeMalformedTable,
		"cannot decode "+t.Name()).WithDetail("%v", err)
}

func decodeTarget(t *fitsio.Table) (oifits.TargetTable, error) {
	rev, err := revision(t)
	if err != nil {
		return oifits.TargetTable{}, err
	}
	tt := oifits.TargetTable{Revision: rev, Targets: make([]oifits.Target, 0, t.NRows)}
	for i := 0; i < t.NRows; i++ {
		r := rowReader{t: t, row: i}
		tg := oifits.Target{
			ID:       r.int(colTargetID),
			Name:     r.str("TARGET"),
			RAEp0:    r.float("RAEP0"),
			DecEp0:   r.float("DECEP0"),
			Equinox:  r.float("EQUINOX"),
			RAErr:    r.optFloat("RA_ERR", 0),
			DecErr:   r.optFloat("DEC_ERR", 0),
			SysVel:   r.optFloat("SYSVEL", 0),
			VelTyp:   r.optStr("VELTYP"),
			VelDef:   r.optStr("VELDEF"),
			PMRA:     r.optFloat("PMRA", 0),
			PMDec:    r.optFloat("PMDEC", 0),
			PMRAErr:  r.optFloat("PMRA_ERR", 0),
			PMDecErr: r.optFloat("PMDEC_ERR", 0),
			Parallax: r.optFloat("PARALLAX", 0),
			ParaErr:  r.optFloat("PARA_ERR", 0),
			SpecTyp:  r.optStr("SPECTYP"),
			Category: r.optStr("CATEGORY"),
		}
		if r.err != nil {
			return oifits.TargetTable{}, malformed(t, fmt.Errorf("row %d: %w", i+1, r.err))
		}
		tt.Targets = append(tt.Targets, tg)
	}
	return tt, nil
}

func decodeArray(t *fitsio.Table) (*oifits.Array, error) {
	rev, err := revision(t)
	if err != nil {
		return nil, err
	}
	a := &oifits.Array{
		Revision: rev,
		ArrName:  t.Header.String("ARRNAME"),
		Frame:    t.Header.String("FRAME"),
	}
	if a.ArrName == "" {
		return nil, malformed(t, fmt.Errorf("ARRNAME missing"))
	}
	for i, key := range []string{"ARRAYX", "ARRAYY", "ARRAYZ"} {
		a.ArrayXYZ[i], _ = t.Header.Float(key)
	}
	for i := 0; i < t.NRows; i++ {
		r := rowReader{t: t, row: i}
		e := oifits.Element{
			TelName:  r.str("TEL_NAME"),
			StaName:  r.str("STA_NAME"),
			StaIndex: r.int(colStaIndex),
			Diameter: r.float("DIAMETER"),
			FOV:      r.optFloat("FOV", 0),
			FOVType:  r.optStr("FOVTYPE"),
		}
		copy(e.StaXYZ[:], r.floats("STAXYZ"))
		if r.err != nil {
			return nil, malformed(t, fmt.Errorf("row %d: %w", i+1, r.err))
		}
		a.Elements = append(a.Elements, e)
	}
	return a, nil
}

func decodeWavelength(t *fitsio.Table) (*oifits.Wavelength, error) {
	rev, err := revision(t)
	if err != nil {
		return nil, err
	}
	w := &oifits.Wavelength{Revision: rev, InsName: t.Header.String("INSNAME")}
	if w.InsName == "" {
		return nil, malformed(t, fmt.Errorf("INSNAME missing"))
	}
	for i := 0; i < t.NRows; i++ {
		r := rowReader{t: t, row: i}
		wave := r.float32s("EFF_WAVE")
		band := r.float32s("EFF_BAND")
		if r.err != nil {
			return nil, malformed(t, fmt.Errorf("row %d: %w", i+1, r.err))
		}
		w.EffWave = append(w.EffWave, wave...)
		w.EffBand = append(w.EffBand, band...)
	}
	return w, nil
}

func decodeCorr(t *fitsio.Table) (*oifits.Corr, error) {
	rev, err := revision(t)
	if err != nil {
		return nil, err
	}
	ndata, err := t.Header.Int("NDATA")
	if err != nil {
		return nil, malformed(t, err)
	}
	c := &oifits.Corr{Revision: rev, CorrName: t.Header.String("CORRNAME"), Ndata: ndata}
	if c.CorrName == "" {
		return nil, malformed(t, fmt.Errorf("CORRNAME missing"))
	}
	for i := 0; i < t.NRows; i++ {
		r := rowReader{t: t, row: i}
		ii, jj, v := r.int("IINDX"), r.int("JINDX"), r.float("CORR")
		if r.err != nil {
			return nil, malformed(t, fmt.Errorf("row %d: %w", i+1, r.err))
		}
		c.IIndx = append(c.IIndx, ii)
		c.JIndx = append(c.JIndx, jj)
		c.Corr = append(c.Corr, v)
	}
	return c, nil
}

// decodeInspol trims each record to the channel count of the wavelength
// table it names; records naming an unknown INSNAME keep the full width.
func decodeInspol(t *fitsio.Table, ds *oifits.Dataset) (*oifits.Inspol, error) {
	rev, err := revision(t)
	if err != nil {
		return nil, err
	}
	npol, _ := t.Header.Int("NPOL")
	p := &oifits.Inspol{
		Revision: rev,
		DateObs:  t.Header.String("DATE-OBS"),
		NPol:     npol,
		ArrName:  t.Header.String("ARRNAME"),
		Orient:   t.Header.String("ORIENT"),
		Model:    t.Header.String("MODEL"),
	}
	for i := 0; i < t.NRows; i++ {
		r := rowReader{t: t, row: i}
		rec := oifits.InspolRecord{
			TargetID: r.int(colTargetID),
			InsName:  r.str("INSNAME"),
			MJDObs:   r.float("MJD_OBS"),
			MJDEnd:   r.float("MJD_END"),
			JXX:      r.complexes("JXX"),
			JYY:      r.complexes("JYY"),
			JXY:      r.complexes("JXY"),
			JYX:      r.complexes("JYX"),
			StaIndex: r.int(colStaIndex),
		}
		if r.err != nil {
			return nil, malformed(t, fmt.Errorf("row %d: %w", i+1, r.err))
		}
		if w := ds.LookupWavelength(rec.InsName); w != nil && w.Nwave() < len(rec.JXX) {
			n := w.Nwave()
			rec.JXX, rec.JYY, rec.JXY, rec.JYX = rec.JXX[:n], rec.JYY[:n], rec.JXY[:n], rec.JYX[:n]
		}
		p.Records = append(p.Records, rec)
	}
	return p, nil
}

func dataDecoder[R oifits.Record[R]](ext string, l layout[R]) func(*fitsio.Table) (*oifits.DataTable[R], error) {
	return func(t *fitsio.Table) (*oifits.DataTable[R], error) {
		return decodeData(ext, t, l)
	}
}

func decodeData[R oifits.Record[R]](ext string, t *fitsio.Table, l layout[R]) (*oifits.DataTable[R], error) {
	rev, err := revision(t)
	if err != nil {
		return nil, err
	}
	h := t.Header
	dt := &oifits.DataTable[R]{DataHeader: oifits.DataHeader{
		Revision: rev,
		DateObs:  h.String("DATE-OBS"),
		ArrName:  h.String("ARRNAME"),
		InsName:  h.String("INSNAME"),
		CorrName: h.String("CORRNAME"),
		AmpTyp:   h.String("AMPTYP"),
		PhiTyp:   h.String("PHITYP"),
		FOVType:  h.String("FOVTYPE"),
		CalStat:  h.String("CALSTAT"),
	}}
	dt.AmpOrder, _ = h.Int("AMPORDER")
	dt.PhiOrder, _ = h.Int("PHIORDER")
	dt.FOV, _ = h.Float("FOV")
	if dt.InsName == "" {
		return nil, malformed(t, fmt.Errorf("INSNAME missing"))
	}

	flag := t.Col(colFlag)
	if flag < 0 {
		return nil, malformed(t, fmt.Errorf("missing column %s", colFlag))
	}
	dt.Nwave = t.Columns[flag].Repeat
	for _, want := range l.columns(dt.DataHeader, nil) {
		if c := t.Col(want.Name); c >= 0 && t.Columns[c].Repeat != want.Repeat {
			return nil, malformed(t, fmt.Errorf("column %s has width %d, want %d for NWAVE %d",
				want.Name, t.Columns[c].Repeat, want.Repeat, dt.Nwave))
		}
	}

	dt.Records = make([]R, 0, t.NRows)
	for i := 0; i < t.NRows; i++ {
		r := rowReader{t: t, row: i}
		rec := l.read(&r)
		if r.err != nil {
			return nil, malformed(t, fmt.Errorf("%s row %d: %w", ext, i+1, r.err))
		}
		dt.Records = append(dt.Records, rec)
	}
	return dt, nil
}
