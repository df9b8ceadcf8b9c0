package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oierr "oifits/pkg/error"
	"oifits/pkg/logging"
	"oifits/pkg/oifits"
	"oifits/pkg/oifits/oitest"
	"oifits/pkg/oiio"
)

// run executes one command line on a fresh command tree and returns what it
// printed on stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	_ = logging.Close()
	defer logging.Close()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-file", filepath.Join(t.TempDir(), "oifits.log")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, dir, name string, ds *oifits.Dataset) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, oiio.Write(ds, path, false))
	return path
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.fits", oitest.Default())
	cfg := oitest.DefaultConfig()
	cfg.Targets = []string{"HD 5678"}
	b := writeFixture(t, dir, "b.fits", oitest.New(cfg))
	out := filepath.Join(dir, "merged.fits")

	_, err := run(t, "merge", out, a, b)
	require.NoError(t, err)

	ds, err := oiio.Read(out)
	require.NoError(t, err)
	assert.Len(t, ds.Targets.Targets, 2)
	assert.Equal(t, 20, ds.CountRecords(oifits.KindVis2))
	assert.Len(t, ds.Arrays, 1)

	_, err = run(t, "merge", out, a, b)
	assert.True(t, oierr.HasCode(err, oierr.CodeFileExists))

	_, err = run(t, "merge", "--clobber", out, a, b)
	assert.NoError(t, err)
}

func TestMergeCommandArgs(t *testing.T) {
	_, err := run(t, "merge", "out.fits", "only-one.fits")
	assert.Error(t, err)

	dir := t.TempDir()
	a := writeFixture(t, dir, "a.fits", oitest.Default())
	_, err = run(t, "merge", filepath.Join(dir, "out.fits"), a, filepath.Join(dir, "missing.fits"))
	assert.True(t, oierr.HasCode(err, oierr.CodeReadFailed))
}

func TestFilterCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "in.fits", oitest.Default())
	out := filepath.Join(dir, "out.fits")

	_, err := run(t, "filter", "--accept-vis=false", "--wave-max", "1.65e-6", in, out)
	require.NoError(t, err)

	ds, err := oiio.Read(out)
	require.NoError(t, err)
	assert.Empty(t, ds.Vis)
	require.Len(t, ds.Wavelengths, 1)
	assert.Equal(t, 2, ds.Wavelengths[0].Nwave())
	assert.Equal(t, 2, ds.Vis2[0].Nwave)
}

func TestFilterCommandSpecFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "in.fits", oitest.Default())
	spec := filepath.Join(dir, "spec.yaml")
	require.NoError(t, os.WriteFile(spec, []byte("accept_vis: false\naccept_t3amp: false\naccept_t3phi: false\n"), 0o600))
	out := filepath.Join(dir, "out.fits")

	// --accept-vis on the command line overrides the file.
	_, err := run(t, "filter", "--spec", spec, "--accept-vis=true", in, out)
	require.NoError(t, err)

	ds, err := oiio.Read(out)
	require.NoError(t, err)
	assert.Len(t, ds.Vis, 1)
	assert.Empty(t, ds.T3)
	assert.Len(t, ds.Vis2, 1)
}

func TestFilterCommandBadPattern(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "in.fits", oitest.Default())

	_, err := run(t, "filter", "--insname", "INS[1", in, filepath.Join(dir, "out.fits"))
	assert.True(t, oierr.HasCode(err, oierr.CodeBadPattern))
	assert.NoFileExists(t, filepath.Join(dir, "out.fits"))
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	clean := writeFixture(t, dir, "clean.fits", oitest.Default())

	out, err := run(t, "check", clean)
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 9 checks failed")

	broken := oitest.Default()
	for i := range broken.Vis2[0].Records {
		broken.Vis2[0].Records[i].TargetID = 99
	}
	bad := writeFixture(t, dir, "bad.fits", broken)

	out, err = run(t, "--max-reports", "2", "check", bad)
	require.Error(t, err)
	assert.Contains(t, out, "... 8 more")
	assert.Contains(t, err.Error(), "NOT CONFORMANT")
}

func TestUpgradeCommand(t *testing.T) {
	dir := t.TempDir()
	old := oitest.Default()
	old.Header.Content = ""
	old.Vis2[0].Revision = 1
	in := writeFixture(t, dir, "v1.fits", old)
	out := filepath.Join(dir, "v2.fits")

	_, err := run(t, "upgrade", in, out)
	require.NoError(t, err)

	ds, err := oiio.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Vis2[0].Revision)
	assert.Zero(t, ds.Vis2[0].Records[0].Time)
	assert.Equal(t, "OIFITS2", ds.Header.Content)
}

func TestPointsCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFixture(t, dir, "in.fits", oitest.Default())

	out, err := run(t, "points", "--kind", "vis2", "--mjd-max", "56974.045", in)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5*5)
	assert.True(t, strings.HasPrefix(lines[0], `"HD 1234" 56974.00000 1.5000e-06 0.25 0.01`), lines[0])

	_, err = run(t, "points", "--kind", "flux", in)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("OIFITS_LOG_FORMAT", "yaml")
	_, err := run(t, "check", "whatever.fits")
	assert.True(t, oierr.HasCode(err, oierr.CodeBadConfig))
}
