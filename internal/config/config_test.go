package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/trail"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(nil))
	d, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 64, d.Length)
	assert.InDelta(t, 0.15, d.Width, 1e-9)
	assert.Equal(t, "vertical", d.Head)
	assert.Equal(t, "normalized", d.Fade)
	assert.Equal(t, "#ff8000", d.HeadColor)
	assert.Equal(t, "#0040ff00", d.TailColor)
	assert.Equal(t, 120, d.Frames)
	assert.Equal(t, 512, d.Size)
	assert.Equal(t, "trail.png", d.Output)
	assert.Equal(t, "info", d.LogLevel)
}

func TestLoad_WithConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := writeConfig(t, "trail.yaml", `
length: 7
fade: literal
headColor: "#00ff00"
output: out.png
`)
	require.NoError(t, Load(newFlags(t, "--config", path)))
	d, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 7, d.Length)
	assert.Equal(t, "literal", d.Fade)
	assert.Equal(t, "#00ff00", d.HeadColor)
	assert.Equal(t, "out.png", d.Output)
	assert.Equal(t, 120, d.Frames)
}

func TestLoad_JSONConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := writeConfig(t, "trail.json", `{"frames": 10, "head": "flat"}`)
	require.NoError(t, Load(newFlags(t, "--config", path)))
	d, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 10, d.Frames)
	assert.Equal(t, "flat", d.Head)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(newFlags(t, "--config", "/nonexistent/trail.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Precedence(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := writeConfig(t, "trail.yaml", "length: 7\nframes: 3\nsize: 128\n")
	t.Setenv("TRAIL_LENGTH", "9")
	t.Setenv("TRAIL_FRAMES", "5")

	require.NoError(t, Load(newFlags(t, "--config", path, "--frames", "11")))
	d, err := Get()
	require.NoError(t, err)

	assert.Equal(t, 9, d.Length, "env overrides file")
	assert.Equal(t, 11, d.Frames, "flag overrides env")
	assert.Equal(t, 128, d.Size, "file overrides default")
}

func TestGet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative length", []string{"--length", "-1"}},
		{"negative frames", []string{"--frames", "-2"}},
		{"zero size", []string{"--size", "0"}},
		{"unknown head", []string{"--head", "round"}},
		{"unknown fade", []string{"--fade", "linear"}},
		{"bad color", []string{"--headColor", "#zz0000"}},
		{"bad level", []string{"--logLevel", "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)

			require.NoError(t, Load(newFlags(t, tt.args...)))
			_, err := Get()
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestDemoConversions(t *testing.T) {
	d := Demo{Head: "FLAT", Fade: "literal", LogLevel: "debug", HeadColor: "#ff0000", TailColor: "#0000ff80", Cutoff: 0.25}

	head, err := d.HeadGeometry()
	require.NoError(t, err)
	assert.Equal(t, trail.FlatHead, head)

	mode, err := d.FadeMode()
	require.NoError(t, err)
	assert.Equal(t, trail.FadeLiteral, mode)

	level, err := d.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	m := d.Material()
	assert.Equal(t, trail.FadeLiteral, m.FadeMode)
	assert.InDelta(t, 1.0, m.HeadColor.R, 1e-9)
	assert.InDelta(t, 128.0/255, m.TailColor.A, 1e-9)
	assert.InDelta(t, 0.25, m.AlphaCutoff, 1e-6)
}
