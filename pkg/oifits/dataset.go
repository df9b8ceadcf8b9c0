// Package oifits holds the in-memory representation of one OIFITS dataset
// and the cross-reference indices used to resolve ARRNAME, INSNAME and
// CORRNAME references between its tables.
//
// A Dataset owns all of its tables through plain slices. The name indices
// map a natural key onto a position in the owning slice and never hold a
// second reference to a table, so they are rebuilt whenever membership
// changes.
package oifits

import (
	"fmt"
	"strings"

	"oifits/pkg/utils/functools"
)

// Dataset is the Table Store for one OIFITS file.
type Dataset struct {
	Header      Header
	Targets     TargetTable
	Arrays      []*Array
	Wavelengths []*Wavelength
	Corrs       []*Corr
	Inspols     []*Inspol
	Vis         []*VisTable
	Vis2        []*Vis2Table
	T3          []*T3Table
	Flux        []*FluxTable

	arrayIndex map[string]int
	waveIndex  map[string]int
	corrIndex  map[string]int
}

// New creates an empty dataset at OIFITS revision 2.
func New() *Dataset {
	return &Dataset{
		Targets:    TargetTable{Revision: 2},
		arrayIndex: make(map[string]int),
		waveIndex:  make(map[string]int),
		corrIndex:  make(map[string]int),
	}
}

// Clone returns a deep copy with freshly built indices.
func (ds *Dataset) Clone() *Dataset {
	c := New()
	c.Header = ds.Header
	c.Targets = ds.Targets.Clone()
	for _, a := range ds.Arrays {
		c.Arrays = append(c.Arrays, a.Clone())
	}
	for _, w := range ds.Wavelengths {
		c.Wavelengths = append(c.Wavelengths, w.Clone())
	}
	for _, cr := range ds.Corrs {
		c.Corrs = append(c.Corrs, cr.Clone())
	}
	for _, p := range ds.Inspols {
		c.Inspols = append(c.Inspols, p.Clone())
	}
	c.Vis = cloneTables(ds.Vis)
	c.Vis2 = cloneTables(ds.Vis2)
	c.T3 = cloneTables(ds.T3)
	c.Flux = cloneTables(ds.Flux)
	c.RebuildIndex()
	return c
}

func cloneTables[R Record[R]](tables []*DataTable[R]) []*DataTable[R] {
	if tables == nil {
		return nil
	}
	out := make([]*DataTable[R], len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return out
}

// CountTables returns the number of tables of the given kind.
func (ds *Dataset) CountTables(kind Kind) int {
	switch kind {
	case KindVis:
		return len(ds.Vis)
	case KindVis2:
		return len(ds.Vis2)
	case KindT3:
		return len(ds.T3)
	case KindFlux:
		return len(ds.Flux)
	case KindInspol:
		return len(ds.Inspols)
	}
	return 0
}

// CountRecords returns the number of records across all tables of a kind.
func (ds *Dataset) CountRecords(kind Kind) int {
	switch kind {
	case KindVis:
		return countRecords(ds.Vis)
	case KindVis2:
		return countRecords(ds.Vis2)
	case KindT3:
		return countRecords(ds.T3)
	case KindFlux:
		return countRecords(ds.Flux)
	case KindInspol:
		n := 0
		for _, p := range ds.Inspols {
			n += len(p.Records)
		}
		return n
	}
	return 0
}

// CountPoints returns the number of (record, channel) data points across
// all tables of a kind.
func (ds *Dataset) CountPoints(kind Kind) int {
	switch kind {
	case KindVis:
		return countPoints(ds.Vis)
	case KindVis2:
		return countPoints(ds.Vis2)
	case KindT3:
		return countPoints(ds.T3)
	case KindFlux:
		return countPoints(ds.Flux)
	case KindInspol:
		n := 0
		for _, p := range ds.Inspols {
			for _, r := range p.Records {
				n += len(r.JXX)
			}
		}
		return n
	}
	return 0
}

func countRecords[R Record[R]](tables []*DataTable[R]) int {
	return functools.Reduce(tables, 0, func(n int, t *DataTable[R]) int { return n + len(t.Records) })
}

func countPoints[R Record[R]](tables []*DataTable[R]) int {
	return functools.Reduce(tables, 0, func(n int, t *DataTable[R]) int { return n + t.CountPoints() })
}

// Summary returns a multi-line human-readable description of the dataset.
func (ds *Dataset) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "OIFITS data:\n")
	if ds.Header.Object != "" {
		fmt.Fprintf(&b, "  OBJECT=%s", ds.Header.Object)
		if ds.Header.DateObs != "" {
			fmt.Fprintf(&b, " DATE-OBS=%s", ds.Header.DateObs)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %d targets\n", len(ds.Targets.Targets))
	fmt.Fprintf(&b, "  %d OI_ARRAY tables:\n", len(ds.Arrays))
	for _, a := range ds.Arrays {
		fmt.Fprintf(&b, "    ARRNAME='%s'  %d elements\n", a.ArrName, len(a.Elements))
	}
	fmt.Fprintf(&b, "  %d OI_WAVELENGTH tables:\n", len(ds.Wavelengths))
	for _, w := range ds.Wavelengths {
		fmt.Fprintf(&b, "    INSNAME='%s'  %d channels", w.InsName, w.Nwave())
		if w.Nwave() > 0 {
			fmt.Fprintf(&b, "  %7.1f-%7.1fnm", 1e9*w.EffWave[0], 1e9*w.EffWave[w.Nwave()-1])
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %d OI_CORR tables\n", len(ds.Corrs))
	fmt.Fprintf(&b, "  %d OI_INSPOL tables\n", len(ds.Inspols))
	writeDataSummary(&b, ExtVis, ds.Vis)
	writeDataSummary(&b, ExtVis2, ds.Vis2)
	writeDataSummary(&b, ExtT3, ds.T3)
	writeDataSummary(&b, ExtFlux, ds.Flux)
	return b.String()
}

func writeDataSummary[R Record[R]](b *strings.Builder, ext string, tables []*DataTable[R]) {
	fmt.Fprintf(b, "  %d %s tables:\n", len(tables), ext)
	for _, t := range tables {
		fmt.Fprintf(b, "    INSNAME='%s'  %d records x %d wavebands\n",
			t.InsName, len(t.Records), t.Nwave)
	}
}
