// Package config loads traildemo settings from defaults, an optional config
// file, TRAIL_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/trail"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRAIL_LENGTH.
const EnvPrefix = "TRAIL"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Demo holds the settings of the traildemo command.
type Demo struct {
	Length    int     `mapstructure:"length"`
	Width     float64 `mapstructure:"width"`
	Head      string  `mapstructure:"head"`
	Fade      string  `mapstructure:"fade"`
	HeadColor string  `mapstructure:"headColor"`
	TailColor string  `mapstructure:"tailColor"`
	Cutoff    float64 `mapstructure:"cutoff"`

	Frames int     `mapstructure:"frames"`
	Radius float64 `mapstructure:"radius"`
	Speed  float64 `mapstructure:"speed"`

	Size       int    `mapstructure:"size"`
	Background string `mapstructure:"background"`
	Output     string `mapstructure:"output"`

	LogLevel string `mapstructure:"logLevel"`
}

func setDefaults() {
	viper.SetDefault("length", 64)
	viper.SetDefault("width", 0.15)
	viper.SetDefault("head", "vertical")
	viper.SetDefault("fade", "normalized")
	viper.SetDefault("headColor", "#ff8000")
	viper.SetDefault("tailColor", "#0040ff00")
	viper.SetDefault("cutoff", 0.05)

	viper.SetDefault("frames", 120)
	viper.SetDefault("radius", 1.0)
	viper.SetDefault("speed", 0.05)

	viper.SetDefault("size", 512)
	viper.SetDefault("background", "#101018")
	viper.SetDefault("output", "trail.png")

	viper.SetDefault("logLevel", "info")
}

// RegisterFlags defines the command-line flags. Flags left unset on the
// command line do not override file or environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.Int("length", 64, "trail length in nodes")
	fs.Float64("width", 0.15, "ribbon half-width")
	fs.String("head", "vertical", "head geometry: flat or vertical")
	fs.String("fade", "normalized", "fade mode: literal or normalized")
	fs.String("headColor", "#ff8000", "head color (hex)")
	fs.String("tailColor", "#0040ff00", "tail color (hex)")
	fs.Float64("cutoff", 0.05, "alpha cutoff")
	fs.Int("frames", 120, "frames to simulate")
	fs.Float64("radius", 1.0, "orbit radius")
	fs.Float64("speed", 0.05, "orbit angle per frame in radians")
	fs.Int("size", 512, "output image size in pixels")
	fs.String("background", "#101018", "background color (hex)")
	fs.StringP("output", "o", "trail.png", "output PNG path")
	fs.String("logLevel", "info", "log level: debug, info, warn or error")
}

// Load layers the configuration sources into the global viper instance.
// fs may be nil. A config file is read only when the config flag names one.
func Load(fs *pflag.FlagSet) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if fs != nil {
		if err := viper.BindPFlags(fs); err != nil {
			return fmt.Errorf("error binding flags: %w", err)
		}
	}

	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Get decodes and validates the loaded settings.
func Get() (Demo, error) {
	var d Demo
	if err := viper.Unmarshal(&d); err != nil {
		return Demo{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Demo{}, err
	}
	return d, nil
}

// Validate checks ranges and enumerations.
func (d Demo) Validate() error {
	if d.Length < 0 {
		return fmt.Errorf("%w: length %d", ErrInvalid, d.Length)
	}
	if d.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalid, d.Frames)
	}
	if d.Size <= 0 {
		return fmt.Errorf("%w: size %d", ErrInvalid, d.Size)
	}
	if _, err := d.HeadGeometry(); err != nil {
		return err
	}
	if _, err := d.FadeMode(); err != nil {
		return err
	}
	if _, err := d.Level(); err != nil {
		return err
	}
	for _, c := range []string{d.HeadColor, d.TailColor, d.Background} {
		if _, err := gg.ParseHex(c); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

// HeadGeometry maps the head setting to a preset.
func (d Demo) HeadGeometry() (trail.HeadGeometry, error) {
	switch strings.ToLower(d.Head) {
	case "flat":
		return trail.FlatHead, nil
	case "vertical", "":
		return trail.VerticalHead, nil
	default:
		return trail.HeadGeometry{}, fmt.Errorf("%w: head %q", ErrInvalid, d.Head)
	}
}

// FadeMode maps the fade setting to a trail fade mode.
func (d Demo) FadeMode() (trail.FadeMode, error) {
	switch strings.ToLower(d.Fade) {
	case trail.FadeLiteral.String():
		return trail.FadeLiteral, nil
	case trail.FadeNormalized.String(), "":
		return trail.FadeNormalized, nil
	default:
		return 0, fmt.Errorf("%w: fade %q", ErrInvalid, d.Fade)
	}
}

// Level parses the log level.
func (d Demo) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(d.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: logLevel %q", ErrInvalid, d.LogLevel)
	}
	return l, nil
}

// Material builds the trail material described by the settings. Colors
// are assumed valid.
func (d Demo) Material() *trail.Material {
	mode, _ := d.FadeMode()
	return trail.NewMaterial(
		trail.WithColors(gg.Hex(d.HeadColor), gg.Hex(d.TailColor)),
		trail.WithFadeMode(mode),
		trail.WithAlphaCutoff(float32(d.Cutoff)),
	)
}
