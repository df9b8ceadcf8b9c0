package merge

import "oifits/pkg/oifits"

// Upgrade returns a copy of ds with every OIFITS 1 table converted to
// OIFITS 2: OI_VIS, OI_VIS2 and OI_T3 revision 1 get revision 2 with TIME
// zeroed, OI_TARGET, OI_ARRAY and OI_WAVELENGTH are bumped to revision 2,
// and the primary header declares CONTENT = OIFITS2. References are kept
// as they are; ds is not modified.
func Upgrade(ds *oifits.Dataset) *oifits.Dataset {
	out := ds.Clone()
	out.Header.Content = "OIFITS2"
	out.Targets.Revision = max(out.Targets.Revision, 2)
	for _, a := range out.Arrays {
		a.Revision = max(a.Revision, 2)
	}
	for _, w := range out.Wavelengths {
		w.Revision = max(w.Revision, 2)
	}
	for _, t := range out.Vis {
		t.Upgrade()
	}
	for _, t := range out.Vis2 {
		t.Upgrade()
	}
	for _, t := range out.T3 {
		t.Upgrade()
	}
	return out
}
