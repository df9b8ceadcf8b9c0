package oifits_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oifits/pkg/oifits"
	"oifits/pkg/oifits/oitest"
)

func TestLookupAuxiliaryTables(t *testing.T) {
	ds := oitest.Default()
	ds.AddCorr(oitest.Corr("CORR1", 10))

	require.NotNil(t, ds.LookupArray("VLTI"))
	assert.Nil(t, ds.LookupArray("CHARA"))

	w := ds.LookupWavelength("INS1")
	require.NotNil(t, w)
	assert.Equal(t, 5, w.Nwave())
	assert.Nil(t, ds.LookupWavelength("ins1"), "lookups are exact matches")

	require.NotNil(t, ds.LookupCorr("CORR1"))
	assert.Nil(t, ds.LookupCorr(""))
}

func TestLookupElementUnsortedStations(t *testing.T) {
	ds := oifits.New()
	a := oitest.Array("A", 3)
	a.Elements[0].StaIndex, a.Elements[2].StaIndex = 9, 1
	ds.AddArray(a)

	el := ds.LookupElement("A", 9)
	require.NotNil(t, el)
	assert.Equal(t, "T1", el.TelName)

	el = ds.LookupElement("A", 1)
	require.NotNil(t, el)
	assert.Equal(t, "T3", el.TelName)

	assert.Nil(t, ds.LookupElement("A", 4))
	assert.Nil(t, ds.LookupElement("B", 1))
}

func TestLookupTargets(t *testing.T) {
	cfg := oitest.DefaultConfig()
	cfg.Targets = []string{"ALPHA", "BETA", "ALPHA"}
	ds := oitest.New(cfg)

	tgt := ds.LookupTarget(2)
	require.NotNil(t, tgt)
	assert.Equal(t, "BETA", tgt.Name)
	assert.Nil(t, ds.LookupTarget(7))

	first := ds.LookupTargetByName("ALPHA")
	require.NotNil(t, first)
	assert.Equal(t, 1, first.ID, "first match wins")
	assert.Nil(t, ds.LookupTargetByName("GAMMA"))
}

func TestRemoveRebuildsIndex(t *testing.T) {
	ds := oifits.New()
	ds.AddWavelength(oitest.Wavelength("A", 2, 1e-6, 1e-7))
	ds.AddWavelength(oitest.Wavelength("B", 3, 1e-6, 1e-7))
	ds.AddWavelength(oitest.Wavelength("C", 4, 1e-6, 1e-7))

	assert.True(t, ds.RemoveWavelength("A"))
	assert.False(t, ds.RemoveWavelength("A"))

	c := ds.LookupWavelength("C")
	require.NotNil(t, c)
	assert.Equal(t, 4, c.Nwave(), "index must follow the shifted slice")
	assert.Equal(t, []string{"B", "C"}, ds.WavelengthNames())

	ds.AddArray(oitest.Array("X", 2))
	ds.AddArray(oitest.Array("Y", 3))
	assert.True(t, ds.RemoveArray("X"))
	require.NotNil(t, ds.LookupArray("Y"))
	assert.Len(t, ds.LookupArray("Y").Elements, 3)

	ds.AddCorr(oitest.Corr("K1", 4))
	ds.AddCorr(oitest.Corr("K2", 5))
	assert.True(t, ds.RemoveCorr("K1"))
	assert.Equal(t, 5, ds.LookupCorr("K2").Ndata)
}

func TestRebuildIndexAfterWholesalePopulation(t *testing.T) {
	ds := oifits.New()
	ds.Arrays = []*oifits.Array{oitest.Array("A1", 2)}
	ds.Wavelengths = []*oifits.Wavelength{oitest.Wavelength("W1", 2, 1e-6, 1e-7)}
	assert.Nil(t, ds.LookupArray("A1"), "index is derived, not live")

	ds.RebuildIndex()
	assert.NotNil(t, ds.LookupArray("A1"))
	assert.NotNil(t, ds.LookupWavelength("W1"))
}

func TestReferences(t *testing.T) {
	ds := oitest.Default()
	ds.Inspols = append(ds.Inspols, oitest.Inspol("VLTI", "INS1", 5, 1))

	refs := ds.References()
	require.Len(t, refs, 5)
	assert.Equal(t, oifits.ExtInspol, refs[0].Ext)
	assert.Equal(t, oifits.ExtVis, refs[1].Ext)
	for _, r := range refs {
		assert.Equal(t, "INS1", r.InsName)
		assert.Equal(t, "VLTI", r.ArrName)
	}
}
