package oifits_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oifits/pkg/oifits"
	"oifits/pkg/oifits/oitest"
)

func TestCounts(t *testing.T) {
	ds := oitest.Default()
	ds.Inspols = append(ds.Inspols, oitest.Inspol("VLTI", "INS1", 5, 1))

	for _, kind := range []oifits.Kind{oifits.KindVis, oifits.KindVis2, oifits.KindT3, oifits.KindFlux} {
		assert.Equal(t, 1, ds.CountTables(kind), kind.String())
		assert.Equal(t, 10, ds.CountRecords(kind), kind.String())
		assert.Equal(t, 50, ds.CountPoints(kind), kind.String())
	}
	assert.Equal(t, 1, ds.CountRecords(oifits.KindInspol))
	assert.Equal(t, 5, ds.CountPoints(oifits.KindInspol))
}

func TestCloneIsDeep(t *testing.T) {
	ds := oitest.Default()
	c := ds.Clone()

	c.Vis2[0].Records[0].Vis2Data[0] = 42
	c.Wavelengths[0].EffWave[0] = 0
	c.Arrays[0].Elements[0].Diameter = 0
	c.Targets.Targets[0].Name = "CHANGED"

	assert.Equal(t, 0.25, ds.Vis2[0].Records[0].Vis2Data[0])
	assert.NotZero(t, ds.Wavelengths[0].EffWave[0])
	assert.Equal(t, 1.8, ds.Arrays[0].Elements[0].Diameter)
	assert.Equal(t, "HD 1234", ds.Targets.Targets[0].Name)

	require.NotNil(t, c.LookupWavelength("INS1"))
	assert.NotSame(t, ds.LookupWavelength("INS1"), c.LookupWavelength("INS1"))
}

func TestSummary(t *testing.T) {
	s := oitest.Default().Summary()
	assert.Contains(t, s, "1 targets")
	assert.Contains(t, s, "ARRNAME='VLTI'")
	assert.Contains(t, s, "INSNAME='INS1'  5 channels")
	assert.Contains(t, s, "1 OI_VIS2 tables")
	assert.Equal(t, 1, strings.Count(s, "OIFITS data:"))
}

func TestRecordSelectAndBlank(t *testing.T) {
	r := oitest.T3Record(1, 56974, 4)
	r.T3Amp[2] = 0.3

	sel := r.Select([]bool{false, true, true})
	require.Equal(t, 2, sel.Channels())
	assert.Equal(t, 0.3, sel.T3Amp[1])

	sel.Blank(true, false)
	assert.True(t, math.IsNaN(sel.T3Amp[0]))
	assert.Equal(t, 5.0, sel.T3Phi[0])
	assert.Equal(t, 0.1, r.T3Amp[0], "source record untouched")
}

func TestT3Baselines(t *testing.T) {
	r := oitest.T3Record(1, 56974, 1)
	legs := r.Baselines()
	require.Len(t, legs, 3)
	assert.InDelta(t, math.Hypot(10, 5), legs[0].Length(), 1e-12)
	assert.InDelta(t, math.Hypot(20, 10), legs[2].Length(), 1e-12)
	assert.InDelta(t, math.Hypot(10, 5)/2e-6, legs[1].UVRadius(2e-6), 1e-3)
}

func TestSNR(t *testing.T) {
	v := oitest.VisRecord(1, 56974, 1, 2, 1)
	amp, ok := v.AmpSNR(0)
	assert.True(t, ok)
	assert.InDelta(t, 10, amp, 1e-9)
	phi, ok := v.PhiSNR(0)
	assert.True(t, ok)
	assert.InDelta(t, 180/math.Pi, phi, 1e-9)

	v2 := oitest.Vis2Record(1, 56974, 1, 2, 1)
	_, ok = v2.PhiSNR(0)
	assert.False(t, ok)

	v2.Vis2Err[0] = 0
	amp, _ = v2.AmpSNR(0)
	assert.True(t, math.IsInf(amp, 1), "zero error flows through IEEE semantics")
}

func TestUpgradeZeroesTime(t *testing.T) {
	ds := oitest.Default()
	tbl := ds.Vis2[0]
	tbl.Revision = 1

	tbl.Upgrade()
	assert.Equal(t, 2, tbl.Revision)
	for _, r := range tbl.Records {
		assert.Zero(t, r.Time)
	}
}
