package merge

import (
	"fmt"
	"math"

	"oifits/pkg/logging"
	"oifits/pkg/oifits"
)

// mergeTargets builds the merged OI_TARGET keyed by name. The first
// occurrence of a name wins and gets the next sequential ID; later
// occurrences are treated as the same object without comparing
// coordinates.
func (m *merger) mergeTargets() {
	m.out.Targets.Revision = 2
	for _, ds := range m.inputs {
		for _, t := range ds.Targets.Targets {
			if _, seen := m.targets[t.Name]; seen {
				continue
			}
			t.ID = len(m.out.Targets.Targets) + 1
			m.out.Targets.Targets = append(m.out.Targets.Targets, t)
			m.targets[t.Name] = t.ID
		}
	}
}

// mergeArrays copies each input array unless an equivalent one is already
// present, in which case references are redirected to it.
func (m *merger) mergeArrays() {
	log := logging.WithComponent("merge")
	for i, ds := range m.inputs {
		m.arrays[i] = make(nameMap, len(ds.Arrays))
		for _, a := range ds.Arrays {
			if match := findArray(m.out.Arrays, a); match != nil {
				m.arrays[i][a.ArrName] = match.ArrName
				continue
			}
			c := a.Clone()
			c.ArrName = uniqueName(a.ArrName, "arr", m.out.LookupArray)
			if c.ArrName != a.ArrName {
				log.Info("renamed OI_ARRAY", "from", a.ArrName, "to", c.ArrName)
			}
			m.out.AddArray(c)
			m.arrays[i][a.ArrName] = c.ArrName
		}
	}
}

// mergeWavelengths copies each input channel grid unless an identical one
// is already present.
func (m *merger) mergeWavelengths() {
	log := logging.WithComponent("merge")
	for i, ds := range m.inputs {
		m.waves[i] = make(nameMap, len(ds.Wavelengths))
		for _, w := range ds.Wavelengths {
			if match := findWavelength(m.out.Wavelengths, w); match != nil {
				m.waves[i][w.InsName] = match.InsName
				continue
			}
			c := w.Clone()
			c.InsName = uniqueName(w.InsName, "ins", m.out.LookupWavelength)
			if c.InsName != w.InsName {
				log.Info("renamed OI_WAVELENGTH", "from", w.InsName, "to", c.InsName)
			}
			m.out.AddWavelength(c)
			m.waves[i][w.InsName] = c.InsName
		}
	}
}

// mergeCorrs copies every input correlation table; they are assumed never
// to repeat across files, so there is no matching.
func (m *merger) mergeCorrs() {
	log := logging.WithComponent("merge")
	for i, ds := range m.inputs {
		m.corrs[i] = make(nameMap, len(ds.Corrs))
		for _, c := range ds.Corrs {
			cc := c.Clone()
			cc.CorrName = uniqueName(c.CorrName, "corr", m.out.LookupCorr)
			if cc.CorrName != c.CorrName {
				log.Info("renamed OI_CORR", "from", c.CorrName, "to", cc.CorrName)
			}
			m.out.AddCorr(cc)
			m.corrs[i][c.CorrName] = cc.CorrName
		}
	}
}

// findArray returns the first merged array that cand can be mapped onto.
func findArray(merged []*oifits.Array, cand *oifits.Array) *oifits.Array {
	for _, a := range merged {
		if arraysMatch(cand, a) {
			return a
		}
	}
	return nil
}

// arraysMatch reports whether every station of cand has a coordinate-equal
// station with the same index in existing. existing may hold extra
// stations. FOV and FOVTYPE are compared only when both tables are
// revision 2 or later.
func arraysMatch(cand, existing *oifits.Array) bool {
	for k := 0; k < 3; k++ {
		if !near(cand.ArrayXYZ[k], existing.ArrayXYZ[k], CoordTolerance) {
			return false
		}
	}
	compareFOV := cand.Revision >= 2 && existing.Revision >= 2
	for _, el := range cand.Elements {
		ex := existing.Element(el.StaIndex)
		if ex == nil {
			return false
		}
		for k := 0; k < 3; k++ {
			if !near(el.StaXYZ[k], ex.StaXYZ[k], CoordTolerance) {
				return false
			}
		}
		if !near(el.Diameter, ex.Diameter, DiameterTolerance) {
			return false
		}
		if compareFOV && (!near(el.FOV, ex.FOV, CoordTolerance) || el.FOVType != ex.FOVType) {
			return false
		}
	}
	return true
}

// findWavelength returns the first merged table with the same channel grid.
func findWavelength(merged []*oifits.Wavelength, cand *oifits.Wavelength) *oifits.Wavelength {
	for _, w := range merged {
		if wavelengthsMatch(cand, w) {
			return w
		}
	}
	return nil
}

func wavelengthsMatch(a, b *oifits.Wavelength) bool {
	if a.Nwave() != b.Nwave() || len(a.EffBand) != len(b.EffBand) {
		return false
	}
	for i := range a.EffWave {
		if !near(float64(a.EffWave[i]), float64(b.EffWave[i]), CoordTolerance) {
			return false
		}
	}
	for i := range a.EffBand {
		if !near(float64(a.EffBand[i]), float64(b.EffBand[i]), CoordTolerance) {
			return false
		}
	}
	return true
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// uniqueName returns name if no table called name exists yet, else the
// first free name_NNN. When the suffix would not fit in MaxNameLen it falls
// back to a generic prefixNNN, so that truncation never creates a clash.
func uniqueName[T any](name, prefix string, exists func(string) *T) string {
	if exists(name) == nil {
		return name
	}
	extend := len(name)+4 <= oifits.MaxNameLen
	for n := 1; ; n++ {
		var cand string
		if extend {
			cand = fmt.Sprintf("%s_%03d", name, n)
		} else {
			cand = fmt.Sprintf("%s%03d", prefix, n)
		}
		if exists(cand) == nil {
			return cand
		}
	}
}
