package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oierr "oifits/pkg/error"
	"oifits/pkg/oifits"
	"oifits/pkg/oifits/oitest"
)

func TestMergeNoInputs(t *testing.T) {
	_, err := Merge(nil)
	require.Error(t, err)
	assert.True(t, oierr.HasCode(err, oierr.CodeNoInput))
}

func TestMergeDeduplicatesTargetsByName(t *testing.T) {
	cfgA := oitest.DefaultConfig()
	cfgA.Targets = []string{"ALPHA", "BETA"}
	a := oitest.New(cfgA)

	cfgB := oitest.DefaultConfig()
	cfgB.Targets = []string{"GAMMA", "ALPHA"} // ALPHA has ID 2 here
	b := oitest.New(cfgB)

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, tg := range out.Targets.Targets {
		names = append(names, tg.Name)
	}
	assert.Equal(t, []string{"ALPHA", "BETA", "GAMMA"}, names)
	for i, tg := range out.Targets.Targets {
		assert.Equal(t, i+1, tg.ID)
	}

	// Every record that referenced ALPHA in either input now uses ID 1.
	require.Len(t, out.Vis2, 2)
	for ti, tbl := range out.Vis2 {
		src := []*oifits.Dataset{a, b}[ti].Vis2[0]
		for ri, r := range tbl.Records {
			srcName := []*oifits.Dataset{a, b}[ti].LookupTarget(src.Records[ri].TargetID).Name
			assert.Equal(t, srcName, out.LookupTarget(r.TargetID).Name)
		}
	}
	assert.Equal(t, 1, out.Vis2[1].Records[1].TargetID, "ALPHA in second input maps onto first ID")
	assert.NoError(t, out.ValidateIntegrity())
}

func TestMergeDeduplicatesIdenticalAuxTables(t *testing.T) {
	a := oitest.Default()
	b := oitest.Default()

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)

	assert.Len(t, out.Wavelengths, 1)
	assert.Len(t, out.Arrays, 1)
	assert.Len(t, out.Targets.Targets, 1)
	for _, tbl := range out.Vis2 {
		assert.Equal(t, "INS1", tbl.InsName)
	}
}

func TestMergeArrayWithinTolerance(t *testing.T) {
	a := oitest.Default()
	b := oitest.Default()
	b.Arrays[0].Elements[0].Diameter += 5e-4
	b.Arrays[0].Elements[1].StaXYZ[0] += 1e-11

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)
	assert.Len(t, out.Arrays, 1)
}

func TestMergeArraySubsetMatches(t *testing.T) {
	a := oitest.Default() // four stations
	cfg := oitest.DefaultConfig()
	cfg.Stations = 3
	b := oitest.New(cfg)

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)
	assert.Len(t, out.Arrays, 1, "candidate stations are a subset of the merged array")

	out, err = Merge([]*oifits.Dataset{b, a})
	require.NoError(t, err)
	assert.Len(t, out.Arrays, 2, "station 4 has no counterpart")
	assert.Equal(t, []string{"VLTI", "VLTI_001"}, out.ArrayNames())
}

func TestMergeArrayMismatchRenames(t *testing.T) {
	a := oitest.Default()
	b := oitest.Default()
	b.Arrays[0].Elements[2].Diameter = 8.2
	b.Inspols = append(b.Inspols, oitest.Inspol("VLTI", "INS1", 5, 1))

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)
	require.Len(t, out.Arrays, 2)
	assert.Equal(t, "VLTI_001", out.Arrays[1].ArrName)

	require.Len(t, out.Flux, 2)
	assert.Equal(t, "VLTI", out.Flux[0].ArrName)
	assert.Equal(t, "VLTI_001", out.Flux[1].ArrName, "OI_FLUX keeps ARRNAME, remapped")
	require.Len(t, out.Inspols, 1)
	assert.Equal(t, "VLTI_001", out.Inspols[0].ArrName)

	for _, tbl := range out.Vis {
		assert.Empty(t, tbl.ArrName, "OI_VIS drops ARRNAME")
	}
	for _, tbl := range out.T3 {
		assert.Empty(t, tbl.ArrName)
	}
}

func TestMergeWavelengthNameCollision(t *testing.T) {
	a := oitest.Default()
	cfg := oitest.DefaultConfig()
	cfg.WaveStart = 2.0e-6
	b := oitest.New(cfg)
	b.Inspols = append(b.Inspols, oitest.Inspol("VLTI", "INS1", 5, 1))

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{"INS1", "INS1_001"}, out.WavelengthNames())
	assert.Equal(t, "INS1", out.Vis2[0].InsName)
	assert.Equal(t, "INS1_001", out.Vis2[1].InsName)
	assert.Equal(t, "INS1_001", out.T3[1].InsName)
	assert.Equal(t, "INS1_001", out.Flux[1].InsName)
	assert.Equal(t, "INS1_001", out.Inspols[0].Records[0].InsName)
	assert.InDelta(t, 2.0e-6, float64(out.LookupWavelength("INS1_001").EffWave[0]), 1e-12)

	// Inputs are untouched.
	assert.Equal(t, "INS1", b.Vis2[0].InsName)
	assert.Equal(t, "INS1", b.Wavelengths[0].InsName)
}

func TestMergeWavelengthDifferentChannelCount(t *testing.T) {
	a := oitest.Default()
	cfg := oitest.DefaultConfig()
	cfg.Nwave = 4
	b := oitest.New(cfg)

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)
	assert.Len(t, out.Wavelengths, 2)
	assert.NoError(t, out.ValidateIntegrity())
}

func TestMergeCorrAlwaysCopied(t *testing.T) {
	a := oitest.Default()
	a.AddCorr(oitest.Corr("C", 10))
	a.Vis2[0].CorrName = "C"
	b := oitest.Default()
	b.AddCorr(oitest.Corr("C", 10))
	b.Vis2[0].CorrName = "C"

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "C_001"}, out.CorrNames())
	assert.Equal(t, "C", out.Vis2[0].CorrName)
	assert.Equal(t, "C_001", out.Vis2[1].CorrName)
	assert.Empty(t, out.Vis[1].CorrName, "empty CORRNAME stays empty")
}

func TestMergeDataCompleteness(t *testing.T) {
	cfg := oitest.DefaultConfig()
	cfg.NVis2 = 40
	a := oitest.New(cfg)
	cfg.WaveStart = 1.0e-6
	b := oitest.New(cfg)

	out, err := Merge([]*oifits.Dataset{a, b})
	require.NoError(t, err)

	for _, kind := range []oifits.Kind{oifits.KindVis, oifits.KindVis2, oifits.KindT3, oifits.KindFlux} {
		assert.Equal(t, a.CountPoints(kind)+b.CountPoints(kind), out.CountPoints(kind), kind.String())
	}
	assert.Equal(t, 80*cfg.Nwave, out.CountPoints(oifits.KindVis2))
}

func TestMergeUpgradesRevisionOne(t *testing.T) {
	a := oitest.Default()
	a.Vis[0].Revision = 1
	a.T3[0].Revision = 1

	out, err := Merge([]*oifits.Dataset{a})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Vis[0].Revision)
	assert.Equal(t, 2, out.T3[0].Revision)
	assert.Zero(t, out.Vis[0].Records[0].Time)
	assert.Zero(t, out.T3[0].Records[0].Time)
	assert.Equal(t, 1, out.Flux[0].Revision)

	assert.Equal(t, 1, a.Vis[0].Revision, "input not modified")
	assert.Equal(t, 3600.0, a.Vis[0].Records[0].Time)
}

func TestMergeDanglingTargetFails(t *testing.T) {
	a := oitest.Default()
	b := oitest.Default()
	b.Vis2[0].Records[4].TargetID = 99

	out, err := Merge([]*oifits.Dataset{a, b})
	require.Error(t, err)
	assert.Nil(t, out)

	var oiErr *oierr.OIError
	require.True(t, errors.As(err, &oiErr))
	assert.Equal(t, oierr.CodeDanglingTarget, oiErr.Code)
	assert.Equal(t, oierr.ErrCategoryIntegrity, oiErr.Category)
	assert.Contains(t, oiErr.Detail, "OI_VIS2 #1 record 5")
}

func TestMergeHeaders(t *testing.T) {
	a := oitest.Default()
	a.Header.Observer = "Alice"
	a.Header.DateObs = "2014-11-01"
	b := oitest.Default()
	b.Header.Observer = "Bob"
	b.Header.DateObs = "2014-11-11"
	b.Header.ProgID = "P1"
	c := oitest.Default()
	c.Header.DateObs = ""
	c.Header.Telescop = ""

	out, err := Merge([]*oifits.Dataset{a, b, c})
	require.NoError(t, err)

	assert.Equal(t, Multiple, out.Header.Observer)
	assert.Equal(t, "TEST-ARRAY", out.Header.Telescop, "empty values do not conflict")
	assert.Equal(t, "P1", out.Header.ProgID)
	assert.Equal(t, "2014-11-06", out.Header.DateObs)
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"A": true, "A_001": true}
	exists := func(n string) *struct{} {
		if taken[n] {
			return &struct{}{}
		}
		return nil
	}
	assert.Equal(t, "B", uniqueName("B", "arr", exists))
	assert.Equal(t, "A_002", uniqueName("A", "arr", exists))

	long := ""
	for len(long) < oifits.MaxNameLen-2 {
		long += "X"
	}
	taken[long] = true
	assert.Equal(t, "arr001", uniqueName(long, "arr", exists))
}

func TestUpgrade(t *testing.T) {
	ds := oitest.Default()
	ds.Header.Content = ""
	ds.Vis2[0].Revision = 1
	ds.Targets.Revision = 1

	out := Upgrade(ds)
	assert.Equal(t, "OIFITS2", out.Header.Content)
	assert.Equal(t, 2, out.Targets.Revision)
	assert.Equal(t, 2, out.Vis2[0].Revision)
	assert.Zero(t, out.Vis2[0].Records[0].Time)
	assert.Equal(t, "VLTI", out.Vis2[0].ArrName, "upgrade keeps references")

	assert.Equal(t, 1, ds.Vis2[0].Revision)
	assert.Empty(t, ds.Header.Content)
}
