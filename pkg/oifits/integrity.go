package oifits

import (
	"errors"
	"fmt"
)

// ValidateIntegrity checks that every foreign key of every data table
// resolves within the dataset: TARGET_ID, ARRNAME + STA_INDEX, INSNAME
// (including NWAVE agreement) and CORRNAME. It returns all violations
// joined into one error, or nil.
func (ds *Dataset) ValidateIntegrity() error {
	var errs []error

	seen := make(map[int]bool, len(ds.Targets.Targets))
	for _, t := range ds.Targets.Targets {
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("OI_TARGET: duplicate TARGET_ID %d", t.ID))
		}
		seen[t.ID] = true
	}

	errs = append(errs, validateTables(ds, ExtVis, ds.Vis)...)
	errs = append(errs, validateTables(ds, ExtVis2, ds.Vis2)...)
	errs = append(errs, validateTables(ds, ExtT3, ds.T3)...)
	errs = append(errs, validateTables(ds, ExtFlux, ds.Flux)...)

	for i, p := range ds.Inspols {
		loc := fmt.Sprintf("%s #%d", ExtInspol, i+1)
		if ds.LookupArray(p.ArrName) == nil {
			errs = append(errs, fmt.Errorf("%s: ARRNAME '%s' not found", loc, p.ArrName))
		}
		for j, r := range p.Records {
			if ds.LookupTarget(r.TargetID) == nil {
				errs = append(errs, fmt.Errorf("%s record %d: TARGET_ID %d not found", loc, j+1, r.TargetID))
			}
			if ds.LookupWavelength(r.InsName) == nil {
				errs = append(errs, fmt.Errorf("%s record %d: INSNAME '%s' not found", loc, j+1, r.InsName))
			}
		}
	}

	return errors.Join(errs...)
}

func validateTables[R Record[R]](ds *Dataset, ext string, tables []*DataTable[R]) []error {
	var errs []error
	for i, t := range tables {
		loc := fmt.Sprintf("%s #%d", ext, i+1)

		var arr *Array
		if t.ArrName != "" {
			if arr = ds.LookupArray(t.ArrName); arr == nil {
				errs = append(errs, fmt.Errorf("%s: ARRNAME '%s' not found", loc, t.ArrName))
			}
		}
		if w := ds.LookupWavelength(t.InsName); w == nil {
			errs = append(errs, fmt.Errorf("%s: INSNAME '%s' not found", loc, t.InsName))
		} else if w.Nwave() != t.Nwave {
			errs = append(errs, fmt.Errorf("%s: NWAVE %d does not match INSNAME '%s' (%d channels)",
				loc, t.Nwave, t.InsName, w.Nwave()))
		}
		if t.CorrName != "" && ds.LookupCorr(t.CorrName) == nil {
			errs = append(errs, fmt.Errorf("%s: CORRNAME '%s' not found", loc, t.CorrName))
		}

		for j, r := range t.Records {
			if ds.LookupTarget(r.Target()) == nil {
				errs = append(errs, fmt.Errorf("%s record %d: TARGET_ID %d not found", loc, j+1, r.Target()))
			}
			if arr == nil {
				continue
			}
			for _, sta := range r.Stations() {
				if arr.Element(sta) == nil {
					errs = append(errs, fmt.Errorf("%s record %d: STA_INDEX %d not in ARRNAME '%s'",
						loc, j+1, sta, t.ArrName))
				}
			}
		}
	}
	return errs
}
