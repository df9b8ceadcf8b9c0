package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oierr "oifits/pkg/error"
	"oifits/pkg/logging"
)

func TestDefaults(t *testing.T) {
	c, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, logging.LevelWarn, c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Empty(t, c.Log.OutputPath)
	assert.Equal(t, 10, c.MaxReports)
}

func TestPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oifits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n  format: json\ncheck:\n  max_reports: 3\n"), 0o600))

	t.Setenv("OIFITS_CHECK_MAX_REPORTS", "5")

	v := New()
	fs := FlagSet()
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--log-level", "debug"}))

	c, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, logging.LevelDebug, c.Log.Level, "flag beats file")
	assert.Equal(t, "json", c.Log.Format, "file beats default")
	assert.Equal(t, 5, c.MaxReports, "environment beats file")
}

func TestTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oifits.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nfile = \"/tmp/oifits.log\"\n"), 0o600))

	c, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/oifits.log", c.Log.OutputPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, oierr.HasCode(err, oierr.CodeReadFailed))

	v := New()
	v.Set(KeyLogFormat, "xml")
	_, err = Load(v, "")
	assert.True(t, oierr.HasCode(err, oierr.CodeBadConfig))

	v = New()
	v.Set(KeyMaxReports, -1)
	_, err = Load(v, "")
	assert.True(t, oierr.HasCode(err, oierr.CodeBadConfig))
}
