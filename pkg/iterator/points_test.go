package iterator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oifits/pkg/filter"
	"oifits/pkg/iterator"
	"oifits/pkg/oifits"
	"oifits/pkg/oifits/oitest"
)

func drain[R oifits.Record[R]](t *testing.T, it *iterator.PointIterator[R]) []iterator.Point[R] {
	t.Helper()
	var points []iterator.Point[R]
	for it.HasNext() {
		p, err := it.Next()
		require.NoError(t, err)
		points = append(points, p)
	}
	return points
}

func TestIteratorOrder(t *testing.T) {
	ds := oitest.Default()
	ds.Vis2 = append(ds.Vis2, ds.Vis2[0].Clone())

	it, err := iterator.NewVis2Iterator(ds, nil)
	require.NoError(t, err)
	points := drain(t, it)
	require.Len(t, points, ds.CountPoints(oifits.KindVis2))

	// lexicographic (table, record, channel)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		ka := [3]int{a.TableIndex, a.RecordIndex, a.Channel}
		kb := [3]int{b.TableIndex, b.RecordIndex, b.Channel}
		assert.Less(t, ka[0]*1e6+ka[1]*1e3+ka[2], kb[0]*1e6+kb[1]*1e3+kb[2])
	}

	first := points[0]
	assert.Equal(t, 0, first.TableIndex)
	assert.Equal(t, 0, first.Channel)
	assert.InDelta(t, 1.5e-6, first.EffWave, 1e-12)
	assert.InDelta(t, 0.1e-6, first.EffBand, 1e-12)
	assert.Equal(t, "HD 1234", it.Target(first).Name)

	last := points[len(points)-1]
	assert.Equal(t, 1, last.TableIndex)
	assert.Equal(t, 9, last.RecordIndex)
	assert.Equal(t, 4, last.Channel)
}

func TestIteratorNextPastEnd(t *testing.T) {
	cfg := oitest.DefaultConfig()
	cfg.NT3 = 1
	cfg.Nwave = 1
	it, err := iterator.NewT3Iterator(oitest.New(cfg), nil)
	require.NoError(t, err)

	require.True(t, it.HasNext())
	_, err = it.Next()
	require.NoError(t, err)
	assert.False(t, it.HasNext())
	_, err = it.Next()
	assert.Error(t, err)
}

func TestIteratorRewind(t *testing.T) {
	ds := oitest.Default()
	it, err := iterator.NewVisIterator(ds, nil)
	require.NoError(t, err)

	first := drain(t, it)
	require.NoError(t, it.Rewind())
	second := drain(t, it)
	assert.Equal(t, first, second)
	assert.Len(t, first, 50)
}

func TestIteratorEmpty(t *testing.T) {
	cfg := oitest.DefaultConfig()
	cfg.NVis = 0
	it, err := iterator.NewVisIterator(oitest.New(cfg), nil)
	require.NoError(t, err)
	assert.False(t, it.HasNext())
}

func TestIteratorHonoursFilter(t *testing.T) {
	ds := oitest.Default()

	spec := filter.Default()
	spec.Wavelength = filter.Range{Min: 1.55e-6, Max: 1.75e-6}
	spec.MJD = filter.Range{Min: 56974, Max: 56974.045}
	it, err := iterator.NewVis2Iterator(ds, &spec)
	require.NoError(t, err)

	points := drain(t, it)
	assert.Len(t, points, 5*2)
	for _, p := range points {
		assert.True(t, spec.Wavelength.Contains(p.EffWave))
		assert.True(t, spec.MJD.Contains(p.Record.MJD))
	}
	assert.Len(t, ds.Vis2[0].Records, 10, "input untouched")
}

func TestIteratorAcceptFlags(t *testing.T) {
	ds := oitest.Default()
	spec := filter.Default()
	spec.AcceptVis = false

	it, err := iterator.NewVisIterator(ds, &spec)
	require.NoError(t, err)
	assert.False(t, it.HasNext())

	spec = filter.Default()
	spec.AcceptT3Phi = false
	t3, err := iterator.NewT3Iterator(ds, &spec)
	require.NoError(t, err)
	p, err := t3.Next()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p.Record.T3Phi[p.Channel]))
}

func TestIteratorSkipsFlagged(t *testing.T) {
	ds := oitest.Default()
	ds.Vis2[0].Records[0].Flag[2] = true

	spec := filter.Default()
	spec.UVRadius = filter.Range{Min: 0, Max: 6.5e6}

	it, err := iterator.NewVis2Iterator(ds, &spec)
	require.NoError(t, err)
	all := drain(t, it)
	assert.Len(t, all, 50)
	assert.True(t, all[0].Flagged, "UV radius gate flags the point")

	spec.AcceptFlagged = false
	it, err = iterator.NewVis2Iterator(ds, &spec)
	require.NoError(t, err)
	for _, p := range drain(t, it) {
		assert.False(t, p.Flagged)
		assert.True(t, spec.UVRadius.Contains(p.Record.Baselines()[0].UVRadius(p.EffWave)))
	}
}

func TestIteratorBadSpec(t *testing.T) {
	spec := filter.Default()
	spec.InsName = "[unterminated"
	_, err := iterator.NewVisIterator(oitest.Default(), &spec)
	assert.Error(t, err)
}
