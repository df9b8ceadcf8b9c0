package merge

import (
	"oifits/pkg/oifits"
)

// tableRename describes how a data table's header references are rewritten.
type tableRename struct {
	keepArrName bool
	arrays      nameMap
	waves       nameMap
	corrs       nameMap
}

func (rn tableRename) apply(h *oifits.DataHeader) {
	if rn.keepArrName {
		if h.ArrName != "" {
			h.ArrName = rn.arrays.lookup(h.ArrName)
		}
	} else {
		h.ArrName = ""
	}
	h.InsName = rn.waves.lookup(h.InsName)
	if h.CorrName != "" {
		h.CorrName = rn.corrs.lookup(h.CorrName)
	}
}

// mergeData copies every data table of every input into the output,
// rewriting references. ARRNAME is dropped from OI_VIS, OI_VIS2 and OI_T3
// because array names are scoped to the file they came from; OI_FLUX and
// OI_INSPOL keep it, remapped.
func (m *merger) mergeData() error {
	for i, src := range m.inputs {
		rn := tableRename{arrays: m.arrays[i], waves: m.waves[i], corrs: m.corrs[i]}

		vis, err := copyTables(m, src, oifits.ExtVis, src.Vis, rn, true)
		if err != nil {
			return err
		}
		vis2, err := copyTables(m, src, oifits.ExtVis2, src.Vis2, rn, true)
		if err != nil {
			return err
		}
		t3, err := copyTables(m, src, oifits.ExtT3, src.T3, rn, true)
		if err != nil {
			return err
		}
		rn.keepArrName = true
		flux, err := copyTables(m, src, oifits.ExtFlux, src.Flux, rn, false)
		if err != nil {
			return err
		}
		inspols, err := m.copyInspols(src, rn)
		if err != nil {
			return err
		}

		m.out.Vis = append(m.out.Vis, vis...)
		m.out.Vis2 = append(m.out.Vis2, vis2...)
		m.out.T3 = append(m.out.T3, t3...)
		m.out.Flux = append(m.out.Flux, flux...)
		m.out.Inspols = append(m.out.Inspols, inspols...)
	}
	return nil
}

// copyTables deep-copies tables from src, rewrites their references and
// target IDs. With upgrade set, revision-1 tables become revision 2.
// OI_FLUX is new in OIFITS 2 and its revision 1 is current.
func copyTables[R oifits.Record[R]](m *merger, src *oifits.Dataset, ext string,
	tables []*oifits.DataTable[R], rn tableRename, upgrade bool) ([]*oifits.DataTable[R], error) {

	out := make([]*oifits.DataTable[R], 0, len(tables))
	for ti, t := range tables {
		c := t.Clone()
		rn.apply(&c.DataHeader)
		for ri, r := range c.Records {
			id, err := m.mapTarget(src, r.Target(), ext, ti, ri)
			if err != nil {
				return nil, err
			}
			c.Records[ri] = r.WithTarget(id)
		}
		if upgrade {
			c.Upgrade()
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *merger) copyInspols(src *oifits.Dataset, rn tableRename) ([]*oifits.Inspol, error) {
	out := make([]*oifits.Inspol, 0, len(src.Inspols))
	for ti, p := range src.Inspols {
		c := p.Clone()
		c.ArrName = rn.arrays.lookup(c.ArrName)
		for ri := range c.Records {
			r := &c.Records[ri]
			id, err := m.mapTarget(src, r.TargetID, oifits.ExtInspol, ti, ri)
			if err != nil {
				return nil, err
			}
			r.TargetID = id
			r.InsName = rn.waves.lookup(r.InsName)
		}
		out = append(out, c)
	}
	return out, nil
}
