// Package filter selects a subset of an OIFITS dataset.
//
// Apply copies the tables, records and spectral channels accepted by a Spec
// into a new dataset, then prunes auxiliary tables that are no longer
// referenced. The input is never modified and the output never contains a
// dangling ARRNAME, INSNAME or CORRNAME.
//
// Range criteria act at two granularities. MJD, target and baseline length
// decide whether a record is kept at all; wavelength decides which channels
// are kept; UV radius and SNR only raise the FLAG of a channel, which stays
// in the output.
package filter

import (
	"log/slog"

	oierr "oifits/pkg/error"
	"oifits/pkg/logging"
	"oifits/pkg/oifits"
	"oifits/pkg/utils/functools"
)

// waveMask records, for one input INSNAME, which channels survived the
// wavelength range and their effective wavelengths.
type waveMask struct {
	keep  []bool
	waves []float64 // kept channels only
}

// run is the per-call state of Apply.
type run struct {
	spec  *Spec
	match *matchers
	masks map[string]waveMask // keyed by input INSNAME
	log   *slog.Logger
}

// Apply returns a filtered copy of ds. It fails only on an invalid spec
// (bad glob pattern or range).
func Apply(ds *oifits.Dataset, spec Spec) (*oifits.Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, oierr.Wrap(err, oierr.CodeBadSpec, "Apply", "filter")
	}
	m, err := compileMatchers(&spec)
	if err != nil {
		return nil, oierr.Wrap(err, oierr.CodeBadPattern, "Apply", "filter")
	}

	r := &run{
		spec:  &spec,
		match: m,
		masks: make(map[string]waveMask),
		log:   logging.WithComponent("filter"),
	}

	out := oifits.New()
	out.Header = ds.Header
	out.Targets = r.filterTargets(ds.Targets)

	for _, a := range functools.Filter(ds.Arrays, func(a *oifits.Array) bool { return m.arr.Match(a.ArrName) }) {
		out.AddArray(a.Clone())
	}
	for _, c := range functools.Filter(ds.Corrs, func(c *oifits.Corr) bool { return m.corr.Match(c.CorrName) }) {
		out.AddCorr(c.Clone())
	}
	for _, w := range ds.Wavelengths {
		if fw := r.filterWavelength(w); fw != nil {
			out.AddWavelength(fw)
		}
	}

	if spec.AcceptVis {
		out.Vis = filterTables(r, oifits.ExtVis, ds.Vis, true, true)
	}
	if spec.AcceptVis2 {
		out.Vis2 = filterTables(r, oifits.ExtVis2, ds.Vis2, true, true)
	}
	if spec.AcceptT3() {
		out.T3 = filterTables(r, oifits.ExtT3, ds.T3, spec.AcceptT3Amp, spec.AcceptT3Phi)
	}
	if spec.AcceptFlux {
		out.Flux = filterTables(r, oifits.ExtFlux, ds.Flux, true, true)
	}
	out.Inspols = r.filterInspols(ds.Inspols)

	prune(out, r.log)
	out.RebuildIndex()

	r.log.Debug("filter applied",
		"vis", out.CountPoints(oifits.KindVis),
		"vis2", out.CountPoints(oifits.KindVis2),
		"t3", out.CountPoints(oifits.KindT3),
		"flux", out.CountPoints(oifits.KindFlux))
	return out, nil
}

// filterTargets keeps the requested target, renumbered to 1, or copies the
// whole table.
func (r *run) filterTargets(in oifits.TargetTable) oifits.TargetTable {
	if r.spec.TargetID == AnyTarget {
		return in.Clone()
	}
	out := oifits.TargetTable{Revision: in.Revision}
	for _, t := range in.Targets {
		if t.ID == r.spec.TargetID {
			t.ID = 1
			out.Targets = append(out.Targets, t)
			return out
		}
	}
	r.log.Warn("requested target not present", "target_id", r.spec.TargetID)
	return out
}

// mapTarget returns the output TARGET_ID of a record, or false if the
// record is rejected on target.
func (r *run) mapTarget(id int) (int, bool) {
	if r.spec.TargetID == AnyTarget {
		return id, true
	}
	if id != r.spec.TargetID {
		return 0, false
	}
	return 1, true
}

// filterWavelength keeps the channels inside the wavelength range. It
// returns nil if the table is rejected by name or left empty.
func (r *run) filterWavelength(w *oifits.Wavelength) *oifits.Wavelength {
	if !r.match.ins.Match(w.InsName) {
		return nil
	}
	mask := waveMask{keep: make([]bool, w.Nwave())}
	for i, wl := range w.EffWave {
		if r.spec.Wavelength.Contains(float64(wl)) {
			mask.keep[i] = true
			mask.waves = append(mask.waves, float64(wl))
		}
	}
	if len(mask.waves) == 0 {
		r.log.Warn("dropping OI_WAVELENGTH with no channel in range", "insname", w.InsName)
		return nil
	}
	r.masks[w.InsName] = mask

	return w.Select(mask.keep)
}

// tableMask returns the channel mask for a data table header, or false if
// the table is rejected by name.
func (r *run) tableMask(h *oifits.DataHeader) (waveMask, bool) {
	if !optional(r.match.arr, h.ArrName) || !optional(r.match.corr, h.CorrName) {
		return waveMask{}, false
	}
	mask, ok := r.masks[h.InsName]
	return mask, ok
}

// keepRecord applies the record-level criteria: MJD and every baseline leg.
func (r *run) keepRecord(mjd float64, baselines []oifits.Baseline) bool {
	if !r.spec.MJD.Contains(mjd) {
		return false
	}
	for _, b := range baselines {
		if !r.spec.Baseline.Contains(b.Length()) {
			return false
		}
	}
	return true
}

// gate flags channel ch of rec when its UV radius or SNR is out of range.
// Only components that are accepted and present are tested.
func gate[R oifits.Record[R]](s *Spec, rec R, baselines []oifits.Baseline, ch int, wave float64, amp, phi bool) {
	for _, b := range baselines {
		if !s.UVRadius.Contains(b.UVRadius(wave)) {
			rec.SetFlag(ch)
			return
		}
	}
	if amp {
		if snr, ok := rec.AmpSNR(ch); ok && !s.SNR.Contains(snr) {
			rec.SetFlag(ch)
			return
		}
	}
	if phi {
		if snr, ok := rec.PhiSNR(ch); ok && !s.SNR.Contains(snr) {
			rec.SetFlag(ch)
		}
	}
}

// filterTables filters every table of one kind. amp and phi select the
// accepted components; the others are blanked to NaN.
func filterTables[R oifits.Record[R]](r *run, ext string, tables []*oifits.DataTable[R], amp, phi bool) []*oifits.DataTable[R] {
	var out []*oifits.DataTable[R]
	for ti, t := range tables {
		mask, ok := r.tableMask(&t.DataHeader)
		if !ok {
			r.log.Debug("table rejected by name", "ext", ext, "extver", ti+1,
				"arrname", t.ArrName, "insname", t.InsName, "corrname", t.CorrName)
			continue
		}

		ft := &oifits.DataTable[R]{DataHeader: t.DataHeader}
		ft.Nwave = len(mask.waves)
		for _, rec := range t.Records {
			if fr, ok := filterRecord(r, rec, mask, amp, phi); ok {
				ft.Records = append(ft.Records, fr)
			}
		}

		if len(ft.Records) == 0 {
			logging.WithTable(ext, t.InsName).Warn("dropping table with no records left", "extver", ti+1)
			continue
		}
		out = append(out, ft)
	}
	return out
}

func filterRecord[R oifits.Record[R]](r *run, rec R, mask waveMask, amp, phi bool) (R, bool) {
	var zero R
	id, ok := r.mapTarget(rec.Target())
	if !ok {
		return zero, false
	}
	baselines := rec.Baselines()
	if !r.keepRecord(rec.ObsMJD(), baselines) {
		return zero, false
	}

	c := rec.Select(mask.keep)
	unflagged := 0
	for ch, wave := range mask.waves {
		if ch >= c.Channels() {
			break
		}
		gate(r.spec, c, baselines, ch, wave, amp, phi)
		if !c.Flagged(ch) {
			unflagged++
		}
	}
	if !r.spec.AcceptFlagged && unflagged == 0 {
		return zero, false
	}

	c.Blank(!amp, !phi)
	return c.WithTarget(id), true
}

// filterInspols keeps OI_INSPOL records on target, overlapping the MJD
// range and measured with a surviving INSNAME. Channels follow the mask of
// each record's own INSNAME.
func (r *run) filterInspols(in []*oifits.Inspol) []*oifits.Inspol {
	var out []*oifits.Inspol
	for ti, p := range in {
		if !optional(r.match.arr, p.ArrName) {
			continue
		}
		fp := *p
		fp.Records = nil
		for _, rec := range p.Records {
			id, ok := r.mapTarget(rec.TargetID)
			if !ok || rec.MJDEnd < r.spec.MJD.Min || rec.MJDObs > r.spec.MJD.Max {
				continue
			}
			mask, ok := r.masks[rec.InsName]
			if !ok {
				continue
			}
			c := rec.Select(mask.keep)
			c.TargetID = id
			fp.Records = append(fp.Records, c)
		}
		if len(fp.Records) == 0 {
			logging.WithTable(oifits.ExtInspol, p.ArrName).Warn("dropping table with no records left", "extver", ti+1)
			continue
		}
		out = append(out, &fp)
	}
	return out
}
