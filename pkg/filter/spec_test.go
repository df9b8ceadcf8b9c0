package filter

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oierr "oifits/pkg/error"
)

func writeSpec(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: 1, Max: 2}
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(2.0001))
	assert.False(t, r.Contains(math.NaN()))
	assert.True(t, All().Contains(math.Inf(1)))
}

func TestLoadSpecYAML(t *testing.T) {
	path := writeSpec(t, "spec.yaml", `
insname: "GRAV*"
target_id: 3
wavelength:
  min: 2.0e-6
  max: 2.4e-6
snr:
  min: 3
accept_vis: false
`)
	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, "GRAV*", spec.InsName)
	assert.Equal(t, "*", spec.ArrName, "unset keys keep defaults")
	assert.Equal(t, 3, spec.TargetID)
	assert.Equal(t, Range{Min: 2.0e-6, Max: 2.4e-6}, spec.Wavelength)
	assert.Equal(t, 3.0, spec.SNR.Min)
	assert.True(t, math.IsInf(spec.SNR.Max, 1))
	assert.False(t, spec.AcceptVis)
	assert.True(t, spec.AcceptVis2)
}

func TestLoadSpecTOML(t *testing.T) {
	path := writeSpec(t, "spec.toml", `
arrname = "VLTI"
accept_t3amp = false

[mjd]
min = 56970.0
max = 56980.0
`)
	spec, err := LoadSpec(path)
	require.NoError(t, err)

	assert.Equal(t, "VLTI", spec.ArrName)
	assert.False(t, spec.AcceptT3Amp)
	assert.True(t, spec.AcceptT3Phi)
	assert.Equal(t, Range{Min: 56970, Max: 56980}, spec.MJD)
	assert.Equal(t, AnyTarget, spec.TargetID)
}

func TestLoadSpecEmptyFile(t *testing.T) {
	spec, err := LoadSpec(writeSpec(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), spec)
}

func TestLoadSpecErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"unknown extension", "spec.json", `{}`, oierr.CodeBadSpec},
		{"unknown yaml key", "spec.yaml", "insnmae: X\n", oierr.CodeBadSpec},
		{"unknown toml key", "spec.toml", "insnmae = \"X\"\n", oierr.CodeBadSpec},
		{"inverted range", "spec.yaml", "mjd: {min: 2, max: 1}\n", oierr.CodeBadSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSpec(writeSpec(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, oierr.HasCode(err, tt.wantCode), "got %v", err)
		})
	}

	_, err := LoadSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, oierr.HasCode(err, oierr.CodeReadFailed))
}

func TestBindFlags(t *testing.T) {
	spec := Default()
	fs := pflag.NewFlagSet("filter", pflag.ContinueOnError)
	spec.BindFlags(fs)

	err := fs.Parse([]string{
		"--insname", "INS*",
		"--target-id", "2",
		"--wave-min", "1.6e-6",
		"--baseline-max", "100",
		"--accept-vis2=false",
	})
	require.NoError(t, err)

	assert.Equal(t, "INS*", spec.InsName)
	assert.Equal(t, 2, spec.TargetID)
	assert.Equal(t, 1.6e-6, spec.Wavelength.Min)
	assert.True(t, math.IsInf(spec.Wavelength.Max, 1))
	assert.Equal(t, 100.0, spec.Baseline.Max)
	assert.False(t, spec.AcceptVis2)
	assert.True(t, spec.AcceptVis)
	assert.NoError(t, spec.Validate())
}

func TestCompileMatchers(t *testing.T) {
	s := Default()
	s.InsName = ""
	s.ArrName = "VLTI_{A,B}"
	m, err := compileMatchers(&s)
	require.NoError(t, err)

	assert.True(t, m.ins.Match("anything"))
	assert.True(t, m.arr.Match("VLTI_A"))
	assert.False(t, m.arr.Match("VLTI_C"))
	assert.True(t, optional(m.arr, ""))
	assert.False(t, optional(m.arr, "CHARA"))
}
