package check

import (
	"fmt"
	"math"

	"oifits/pkg/oifits"
)

// Check is one registered conformity check.
type Check struct {
	Name string
	Run  func(ds *oifits.Dataset, r *Result)
}

var registry = []Check{
	{"header", checkHeader},
	{"unique_targets", checkUniqueTargets},
	{"targets_present", checkTargetsPresent},
	{"arrays_present", checkArraysPresent},
	{"elements_present", checkElementsPresent},
	{"wavelengths", checkWavelengths},
	{"corrs_present", checkCorrsPresent},
	{"flagging", checkFlagging},
	{"t3amp_range", checkT3Amp},
}

// Checks returns the registered checks in execution order.
func Checks() []Check {
	return append([]Check(nil), registry...)
}

// Report pairs a check name with its result.
type Report struct {
	Name string
	*Result
}

// RunAll runs every registered check. maxReports caps the stored locations
// per check; zero or less means MaxReports.
func RunAll(ds *oifits.Dataset, maxReports int) []Report {
	reports := make([]Report, 0, len(registry))
	for _, c := range registry {
		r := newResult(maxReports)
		c.Run(ds, r)
		reports = append(reports, Report{Name: c.Name, Result: r})
	}
	return reports
}

// Worst returns the highest level among reports.
func Worst(reports []Report) Level {
	worst := None
	for _, r := range reports {
		worst = max(worst, r.Level)
	}
	return worst
}

// recordView is the part of a data record the checks need.
type recordView interface {
	Target() int
	Stations() []int
	Channels() int
	Flagged(ch int) bool
	AmpSNR(ch int) (float64, bool)
	PhiSNR(ch int) (float64, bool)
}

// tableView gives uniform access to data tables of every kind.
type tableView struct {
	loc     string
	ext     string
	hdr     *oifits.DataHeader
	records []recordView
}

func dataTables(ds *oifits.Dataset) []tableView {
	var views []tableView
	views = appendViews(views, oifits.ExtVis, ds.Vis)
	views = appendViews(views, oifits.ExtVis2, ds.Vis2)
	views = appendViews(views, oifits.ExtT3, ds.T3)
	views = appendViews(views, oifits.ExtFlux, ds.Flux)
	return views
}

func appendViews[R oifits.Record[R]](views []tableView, ext string, tables []*oifits.DataTable[R]) []tableView {
	for i, t := range tables {
		v := tableView{
			loc:     fmt.Sprintf("%s #%d", ext, i+1),
			ext:     ext,
			hdr:     &t.DataHeader,
			records: make([]recordView, len(t.Records)),
		}
		for j, r := range t.Records {
			v.records[j] = r
		}
		views = append(views, v)
	}
	return views
}

func checkHeader(ds *oifits.Dataset, r *Result) {
	const desc = "Mandatory primary header keyword missing"
	if ds.Header.Content != "OIFITS2" {
		// OIFITS 1 has no primary header requirements
		return
	}
	for _, f := range ds.Header.Fields() {
		switch f.Keyword {
		case "ORIGIN", "DATE", "DATE-OBS", "TELESCOP", "INSTRUME", "OBSERVER", "INSMODE", "OBJECT":
			if *f.Value == "" {
				r.breach(NotConformant, desc, "primary header %s", f.Keyword)
			}
		}
	}
}

func checkUniqueTargets(ds *oifits.Dataset, r *Result) {
	const desc = "Duplicate target name in OI_TARGET"
	first := make(map[string]int)
	for i, t := range ds.Targets.Targets {
		if j, dup := first[t.Name]; dup {
			r.breach(Warning, desc, "OI_TARGET row %d: name '%s' already used by row %d", i+1, t.Name, j+1)
			continue
		}
		first[t.Name] = i
	}
}

func checkTargetsPresent(ds *oifits.Dataset, r *Result) {
	const desc = "Reference to missing TARGET_ID"
	ids := make(map[int]bool)
	for i, t := range ds.Targets.Targets {
		if ids[t.ID] {
			r.breach(Malformed, desc, "OI_TARGET row %d: duplicate TARGET_ID %d", i+1, t.ID)
		}
		ids[t.ID] = true
	}
	for _, v := range dataTables(ds) {
		for j, rec := range v.records {
			if !ids[rec.Target()] {
				r.breach(NotConformant, desc, "%s record %d: TARGET_ID %d", v.loc, j+1, rec.Target())
			}
		}
	}
	for i, p := range ds.Inspols {
		for j, rec := range p.Records {
			if !ids[rec.TargetID] {
				r.breach(NotConformant, desc, "%s #%d record %d: TARGET_ID %d", oifits.ExtInspol, i+1, j+1, rec.TargetID)
			}
		}
	}
}

func checkArraysPresent(ds *oifits.Dataset, r *Result) {
	const desc = "Missing or unresolved ARRNAME"
	for _, v := range dataTables(ds) {
		switch {
		case v.hdr.ArrName != "":
			if ds.LookupArray(v.hdr.ArrName) == nil {
				r.breach(NotConformant, desc, "%s: ARRNAME '%s' has no OI_ARRAY", v.loc, v.hdr.ArrName)
			}
		case v.ext != oifits.ExtFlux && v.hdr.Revision >= 2:
			r.breach(NotConformant, desc, "%s: ARRNAME is mandatory at revision %d", v.loc, v.hdr.Revision)
		}
	}
	for i, p := range ds.Inspols {
		if ds.LookupArray(p.ArrName) == nil {
			r.breach(NotConformant, desc, "%s #%d: ARRNAME '%s' has no OI_ARRAY", oifits.ExtInspol, i+1, p.ArrName)
		}
	}
}

func checkElementsPresent(ds *oifits.Dataset, r *Result) {
	const desc = "Reference to missing station in OI_ARRAY"
	for _, v := range dataTables(ds) {
		arr := ds.LookupArray(v.hdr.ArrName)
		if arr == nil {
			continue
		}
		for j, rec := range v.records {
			for _, sta := range rec.Stations() {
				if arr.Element(sta) == nil {
					r.breach(NotConformant, desc, "%s record %d: STA_INDEX %d not in '%s'", v.loc, j+1, sta, arr.ArrName)
				}
			}
		}
	}
}

func checkWavelengths(ds *oifits.Dataset, r *Result) {
	const desc = "Unresolved INSNAME or channel count mismatch"
	for _, w := range ds.Wavelengths {
		for ch, wl := range w.EffWave {
			if !(wl > 0) {
				r.breach(Malformed, desc, "%s '%s' channel %d: EFF_WAVE %g", oifits.ExtWavelength, w.InsName, ch+1, wl)
			}
		}
	}
	for _, v := range dataTables(ds) {
		w := ds.LookupWavelength(v.hdr.InsName)
		if w == nil {
			r.breach(Malformed, desc, "%s: INSNAME '%s' has no OI_WAVELENGTH", v.loc, v.hdr.InsName)
			continue
		}
		if v.hdr.Nwave != w.Nwave() {
			r.breach(Malformed, desc, "%s: NWAVE %d, '%s' has %d channels", v.loc, v.hdr.Nwave, w.InsName, w.Nwave())
		}
		for j, rec := range v.records {
			if rec.Channels() != w.Nwave() {
				r.breach(Malformed, desc, "%s record %d: %d channels, expected %d", v.loc, j+1, rec.Channels(), w.Nwave())
			}
		}
	}
	for i, p := range ds.Inspols {
		for j, rec := range p.Records {
			if ds.LookupWavelength(rec.InsName) == nil {
				r.breach(Malformed, desc, "%s #%d record %d: INSNAME '%s' has no OI_WAVELENGTH", oifits.ExtInspol, i+1, j+1, rec.InsName)
			}
		}
	}
}

func checkCorrsPresent(ds *oifits.Dataset, r *Result) {
	const desc = "Reference to missing OI_CORR"
	for _, v := range dataTables(ds) {
		if v.hdr.CorrName != "" && ds.LookupCorr(v.hdr.CorrName) == nil {
			r.breach(NotConformant, desc, "%s: CORRNAME '%s'", v.loc, v.hdr.CorrName)
		}
	}
}

// checkFlagging reports unflagged channels whose amplitude or phase SNR is
// not finite: a NaN value or a zero error.
func checkFlagging(ds *oifits.Dataset, r *Result) {
	const desc = "Unflagged data with non-finite value or zero error"
	for _, v := range dataTables(ds) {
		for j, rec := range v.records {
			for ch := 0; ch < rec.Channels(); ch++ {
				if rec.Flagged(ch) {
					continue
				}
				amp, hasAmp := rec.AmpSNR(ch)
				phi, hasPhi := rec.PhiSNR(ch)
				if (hasAmp && !finite(amp)) || (hasPhi && !finite(phi)) {
					r.breach(Warning, desc, "%s record %d channel %d", v.loc, j+1, ch+1)
				}
			}
		}
	}
}

// checkT3Amp reports unflagged triple amplitudes more than 5 sigma outside
// [0, 1].
func checkT3Amp(ds *oifits.Dataset, r *Result) {
	const desc = "Unflagged T3AMP outside [0, 1] by more than 5 sigma"
	for i, t := range ds.T3 {
		for j, rec := range t.Records {
			for ch, amp := range rec.T3Amp {
				if rec.Flag[ch] || math.IsNaN(amp) {
					continue
				}
				sigma := 5 * rec.T3AmpErr[ch]
				if amp < -sigma || amp > 1+sigma {
					r.breach(Warning, desc, "%s #%d record %d channel %d: %g", oifits.ExtT3, i+1, j+1, ch+1, amp)
				}
			}
		}
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
