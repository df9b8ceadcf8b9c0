package oifits

import (
	"slices"

	"oifits/pkg/logging"
)

// RebuildIndex rebuilds the ARRNAME, INSNAME and CORRNAME indices from the
// current table slices. When two tables share a name the first one wins.
//
// Data-table references that do not resolve are logged as warnings; they
// are not an error here, the dataset simply fails integrity checks later.
func (ds *Dataset) RebuildIndex() {
	ds.arrayIndex = make(map[string]int, len(ds.Arrays))
	for i, a := range ds.Arrays {
		if _, dup := ds.arrayIndex[a.ArrName]; !dup {
			ds.arrayIndex[a.ArrName] = i
		}
	}
	ds.waveIndex = make(map[string]int, len(ds.Wavelengths))
	for i, w := range ds.Wavelengths {
		if _, dup := ds.waveIndex[w.InsName]; !dup {
			ds.waveIndex[w.InsName] = i
		}
	}
	ds.corrIndex = make(map[string]int, len(ds.Corrs))
	for i, c := range ds.Corrs {
		if _, dup := ds.corrIndex[c.CorrName]; !dup {
			ds.corrIndex[c.CorrName] = i
		}
	}
	ds.warnUnresolved()
}

func (ds *Dataset) warnUnresolved() {
	for _, ref := range ds.References() {
		log := logging.WithTable(ref.Ext, "")
		if ref.ArrName != "" && ds.LookupArray(ref.ArrName) == nil {
			log.Warn("ARRNAME reference not found", "arrname", ref.ArrName)
		}
		if ref.InsName != "" && ds.LookupWavelength(ref.InsName) == nil {
			log.Warn("INSNAME reference not found", "insname", ref.InsName)
		}
		if ref.CorrName != "" && ds.LookupCorr(ref.CorrName) == nil {
			log.Warn("CORRNAME reference not found", "corrname", ref.CorrName)
		}
	}
}

// TableRef is the set of auxiliary-table names one table refers to.
type TableRef struct {
	Ext      string
	ArrName  string
	InsName  string
	CorrName string
}

// References lists the auxiliary-table references made by every data table
// and every OI_INSPOL record, in writer order.
func (ds *Dataset) References() []TableRef {
	var refs []TableRef
	for _, p := range ds.Inspols {
		for _, r := range p.Records {
			refs = append(refs, TableRef{Ext: ExtInspol, ArrName: p.ArrName, InsName: r.InsName})
		}
	}
	refs = appendRefs(refs, ExtVis, ds.Vis)
	refs = appendRefs(refs, ExtVis2, ds.Vis2)
	refs = appendRefs(refs, ExtT3, ds.T3)
	refs = appendRefs(refs, ExtFlux, ds.Flux)
	return refs
}

func appendRefs[R Record[R]](refs []TableRef, ext string, tables []*DataTable[R]) []TableRef {
	for _, t := range tables {
		refs = append(refs, TableRef{Ext: ext, ArrName: t.ArrName, InsName: t.InsName, CorrName: t.CorrName})
	}
	return refs
}

// LookupArray returns the OI_ARRAY with the given ARRNAME, or nil.
func (ds *Dataset) LookupArray(arrname string) *Array {
	if i, ok := ds.arrayIndex[arrname]; ok && i < len(ds.Arrays) {
		return ds.Arrays[i]
	}
	return nil
}

// LookupElement returns the station with index staIndex in the array
// named arrname, or nil.
func (ds *Dataset) LookupElement(arrname string, staIndex int) *Element {
	a := ds.LookupArray(arrname)
	if a == nil {
		return nil
	}
	return a.Element(staIndex)
}

// LookupWavelength returns the OI_WAVELENGTH with the given INSNAME, or nil.
func (ds *Dataset) LookupWavelength(insname string) *Wavelength {
	if i, ok := ds.waveIndex[insname]; ok && i < len(ds.Wavelengths) {
		return ds.Wavelengths[i]
	}
	return nil
}

// LookupCorr returns the OI_CORR with the given CORRNAME, or nil.
func (ds *Dataset) LookupCorr(corrname string) *Corr {
	if i, ok := ds.corrIndex[corrname]; ok && i < len(ds.Corrs) {
		return ds.Corrs[i]
	}
	return nil
}

// LookupTarget returns the target with the given TARGET_ID, or nil.
func (ds *Dataset) LookupTarget(id int) *Target {
	for i := range ds.Targets.Targets {
		if ds.Targets.Targets[i].ID == id {
			return &ds.Targets.Targets[i]
		}
	}
	return nil
}

// LookupTargetByName returns the first target named name, or nil.
func (ds *Dataset) LookupTargetByName(name string) *Target {
	for i := range ds.Targets.Targets {
		if ds.Targets.Targets[i].Name == name {
			return &ds.Targets.Targets[i]
		}
	}
	return nil
}

// AddArray appends a and indexes it.
func (ds *Dataset) AddArray(a *Array) {
	ds.Arrays = append(ds.Arrays, a)
	if ds.arrayIndex == nil {
		ds.arrayIndex = make(map[string]int)
	}
	if _, dup := ds.arrayIndex[a.ArrName]; !dup {
		ds.arrayIndex[a.ArrName] = len(ds.Arrays) - 1
	}
}

// AddWavelength appends w and indexes it.
func (ds *Dataset) AddWavelength(w *Wavelength) {
	ds.Wavelengths = append(ds.Wavelengths, w)
	if ds.waveIndex == nil {
		ds.waveIndex = make(map[string]int)
	}
	if _, dup := ds.waveIndex[w.InsName]; !dup {
		ds.waveIndex[w.InsName] = len(ds.Wavelengths) - 1
	}
}

// AddCorr appends c and indexes it.
func (ds *Dataset) AddCorr(c *Corr) {
	ds.Corrs = append(ds.Corrs, c)
	if ds.corrIndex == nil {
		ds.corrIndex = make(map[string]int)
	}
	if _, dup := ds.corrIndex[c.CorrName]; !dup {
		ds.corrIndex[c.CorrName] = len(ds.Corrs) - 1
	}
}

// RemoveArray removes the array named arrname. Positions of the remaining
// arrays shift, so the index is rebuilt. Reports whether a table was removed.
func (ds *Dataset) RemoveArray(arrname string) bool {
	i, ok := ds.arrayIndex[arrname]
	if !ok {
		return false
	}
	ds.Arrays = slices.Delete(ds.Arrays, i, i+1)
	ds.arrayIndex = make(map[string]int, len(ds.Arrays))
	for j, a := range ds.Arrays {
		if _, dup := ds.arrayIndex[a.ArrName]; !dup {
			ds.arrayIndex[a.ArrName] = j
		}
	}
	return true
}

// RemoveWavelength removes the wavelength table named insname.
func (ds *Dataset) RemoveWavelength(insname string) bool {
	i, ok := ds.waveIndex[insname]
	if !ok {
		return false
	}
	ds.Wavelengths = slices.Delete(ds.Wavelengths, i, i+1)
	ds.waveIndex = make(map[string]int, len(ds.Wavelengths))
	for j, w := range ds.Wavelengths {
		if _, dup := ds.waveIndex[w.InsName]; !dup {
			ds.waveIndex[w.InsName] = j
		}
	}
	return true
}

// RemoveCorr removes the correlation table named corrname.
func (ds *Dataset) RemoveCorr(corrname string) bool {
	i, ok := ds.corrIndex[corrname]
	if !ok {
		return false
	}
	ds.Corrs = slices.Delete(ds.Corrs, i, i+1)
	ds.corrIndex = make(map[string]int, len(ds.Corrs))
	for j, c := range ds.Corrs {
		if _, dup := ds.corrIndex[c.CorrName]; !dup {
			ds.corrIndex[c.CorrName] = j
		}
	}
	return true
}

// ArrayNames, WavelengthNames and CorrNames return the table names in list order.
func (ds *Dataset) ArrayNames() []string {
	names := make([]string, len(ds.Arrays))
	for i, a := range ds.Arrays {
		names[i] = a.ArrName
	}
	return names
}

func (ds *Dataset) WavelengthNames() []string {
	names := make([]string, len(ds.Wavelengths))
	for i, w := range ds.Wavelengths {
		names[i] = w.InsName
	}
	return names
}

func (ds *Dataset) CorrNames() []string {
	names := make([]string, len(ds.Corrs))
	for i, c := range ds.Corrs {
		names[i] = c.CorrName
	}
	return names
}
