package filter

import (
	"log/slog"

	"oifits/pkg/oifits"
	"oifits/pkg/utils/functools"
)

// references holds the names still used by retained tables.
type references struct {
	arrays map[string]bool
	waves  map[string]bool
	corrs  map[string]bool
}

// collectReferences gathers ARRNAME and CORRNAME from the OI_VIS, OI_VIS2,
// OI_T3 and OI_FLUX tables, and INSNAME from those plus every OI_INSPOL
// record.
func collectReferences(ds *oifits.Dataset) references {
	refs := ds.References()
	ext := func(r oifits.TableRef) bool { return r.Ext != oifits.ExtInspol }

	data := functools.Filter(refs, ext)
	return references{
		arrays: functools.Set(data, func(r oifits.TableRef) string { return r.ArrName }),
		waves:  functools.Set(refs, func(r oifits.TableRef) string { return r.InsName }),
		corrs:  functools.Set(data, func(r oifits.TableRef) string { return r.CorrName }),
	}
}

// prune removes unreferenced OI_ARRAY, OI_WAVELENGTH, OI_CORR and OI_INSPOL
// tables until nothing changes. An OI_INSPOL table survives only while its
// array does; removing one can orphan a wavelength table, hence the loop.
func prune(ds *oifits.Dataset, log *slog.Logger) {
	for {
		refs := collectReferences(ds)
		removed := 0

		for _, name := range ds.ArrayNames() {
			if !refs.arrays[name] && ds.RemoveArray(name) {
				log.Info("pruned unreferenced table", "table", oifits.ExtArray, "name", name)
				removed++
			}
		}

		n := len(ds.Inspols)
		ds.Inspols = functools.Filter(ds.Inspols, func(p *oifits.Inspol) bool {
			if ds.LookupArray(p.ArrName) != nil {
				return true
			}
			log.Info("pruned unreferenced table", "table", oifits.ExtInspol, "arrname", p.ArrName)
			return false
		})
		removed += n - len(ds.Inspols)

		for _, name := range ds.WavelengthNames() {
			if !refs.waves[name] && ds.RemoveWavelength(name) {
				log.Info("pruned unreferenced table", "table", oifits.ExtWavelength, "name", name)
				removed++
			}
		}
		for _, name := range ds.CorrNames() {
			if !refs.corrs[name] && ds.RemoveCorr(name) {
				log.Info("pruned unreferenced table", "table", oifits.ExtCorr, "name", name)
				removed++
			}
		}

		if removed == 0 {
			return
		}
	}
}
