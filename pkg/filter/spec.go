package filter

import (
	"math"

	"github.com/spf13/pflag"

	oierr "oifits/pkg/error"
)

// AnyTarget disables filtering on TARGET_ID.
const AnyTarget = -1

// Range is an inclusive [Min, Max] interval. NaN is never contained.
type Range struct {
	Min float64 `yaml:"min" toml:"min"`
	Max float64 `yaml:"max" toml:"max"`
}

// All returns the unbounded range.
func All() Range {
	return Range{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Spec selects the subset of a dataset kept by Apply. The zero value
// rejects everything; start from Default.
type Spec struct {
	// Glob patterns matched against table names.
	ArrName  string `yaml:"arrname" toml:"arrname"`
	InsName  string `yaml:"insname" toml:"insname"`
	CorrName string `yaml:"corrname" toml:"corrname"`

	// TargetID keeps a single target, renumbered to 1, unless AnyTarget.
	TargetID int `yaml:"target_id" toml:"target_id"`

	MJD        Range `yaml:"mjd" toml:"mjd"`
	Wavelength Range `yaml:"wavelength" toml:"wavelength"` // metres
	Baseline   Range `yaml:"baseline" toml:"baseline"`     // metres
	UVRadius   Range `yaml:"uv_radius" toml:"uv_radius"`   // cycles/radian
	SNR        Range `yaml:"snr" toml:"snr"`

	AcceptVis     bool `yaml:"accept_vis" toml:"accept_vis"`
	AcceptVis2    bool `yaml:"accept_vis2" toml:"accept_vis2"`
	AcceptT3Amp   bool `yaml:"accept_t3amp" toml:"accept_t3amp"`
	AcceptT3Phi   bool `yaml:"accept_t3phi" toml:"accept_t3phi"`
	AcceptFlux    bool `yaml:"accept_flux" toml:"accept_flux"`
	AcceptFlagged bool `yaml:"accept_flagged" toml:"accept_flagged"`
}

// Default returns a Spec that accepts everything.
func Default() Spec {
	return Spec{
		ArrName:       "*",
		InsName:       "*",
		CorrName:      "*",
		TargetID:      AnyTarget,
		MJD:           All(),
		Wavelength:    All(),
		Baseline:      All(),
		UVRadius:      All(),
		SNR:           All(),
		AcceptVis:     true,
		AcceptVis2:    true,
		AcceptT3Amp:   true,
		AcceptT3Phi:   true,
		AcceptFlux:    true,
		AcceptFlagged: true,
	}
}

// AcceptT3 reports whether any OI_T3 component is accepted.
func (s *Spec) AcceptT3() bool {
	return s.AcceptT3Amp || s.AcceptT3Phi
}

// Validate rejects ranges that are inverted or contain NaN bounds.
func (s *Spec) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"mjd", s.MJD},
		{"wavelength", s.Wavelength},
		{"baseline", s.Baseline},
		{"uv_radius", s.UVRadius},
		{"snr", s.SNR},
	}
	for _, rg := range ranges {
		if math.IsNaN(rg.r.Min) || math.IsNaN(rg.r.Max) || rg.r.Min > rg.r.Max {
			return oierr.Newf(oierr.ErrCategoryUsage, oierr.CodeBadSpec,
				"invalid %s range [%g, %g]", rg.name, rg.r.Min, rg.r.Max)
		}
	}
	if s.TargetID < AnyTarget {
		return oierr.Newf(oierr.ErrCategoryUsage, oierr.CodeBadSpec, "invalid target id %d", s.TargetID)
	}
	return nil
}

// BindFlags registers one flag per field on fs, writing into s. Defaults
// are taken from the current values of s.
func (s *Spec) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.ArrName, "arrname", s.ArrName, "glob pattern for ARRNAME")
	fs.StringVar(&s.InsName, "insname", s.InsName, "glob pattern for INSNAME")
	fs.StringVar(&s.CorrName, "corrname", s.CorrName, "glob pattern for CORRNAME")
	fs.IntVar(&s.TargetID, "target-id", s.TargetID, "keep only this TARGET_ID (-1 for all)")

	rangeFlags(fs, &s.MJD, "mjd", "MJD")
	rangeFlags(fs, &s.Wavelength, "wave", "wavelength in metres")
	rangeFlags(fs, &s.Baseline, "baseline", "projected baseline in metres")
	rangeFlags(fs, &s.UVRadius, "uvrad", "UV radius in cycles/radian")
	rangeFlags(fs, &s.SNR, "snr", "signal-to-noise ratio")

	fs.BoolVar(&s.AcceptVis, "accept-vis", s.AcceptVis, "keep OI_VIS tables")
	fs.BoolVar(&s.AcceptVis2, "accept-vis2", s.AcceptVis2, "keep OI_VIS2 tables")
	fs.BoolVar(&s.AcceptT3Amp, "accept-t3amp", s.AcceptT3Amp, "keep OI_T3 amplitudes")
	fs.BoolVar(&s.AcceptT3Phi, "accept-t3phi", s.AcceptT3Phi, "keep OI_T3 closure phases")
	fs.BoolVar(&s.AcceptFlux, "accept-flux", s.AcceptFlux, "keep OI_FLUX tables")
	fs.BoolVar(&s.AcceptFlagged, "accept-flagged", s.AcceptFlagged, "keep records with every channel flagged")
}

func rangeFlags(fs *pflag.FlagSet, r *Range, name, what string) {
	fs.Float64Var(&r.Min, name+"-min", r.Min, "minimum "+what)
	fs.Float64Var(&r.Max, name+"-max", r.Max, "maximum "+what)
}
