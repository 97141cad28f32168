package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/gifocr/internal/models"
)

const (
	BackendGRPC = "grpc"
	BackendREST = "rest"

	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"

	DefaultEndpoint = "https://vision.googleapis.com"
)

type Config struct {
	InputPath       string      `yaml:"-"`
	CredentialsPath string      `yaml:"-"`
	CredentialsDir  string      `yaml:"credentialsDir"`
	SubtitleZone    models.Zone `yaml:"subtitleZone"`
	PlayerZone      models.Zone `yaml:"playerZone"`
	LanguageHint    string      `yaml:"languageHint"`
	JPEGQuality     int         `yaml:"jpegQuality"`
	Workers         int         `yaml:"workers"`
	Backend         string      `yaml:"backend"`
	Endpoint        string      `yaml:"endpoint"`
	Format          string      `yaml:"format"`
	DPI             int         `yaml:"dpi"`
	ShowStats       bool        `yaml:"showStats"`
}

// Default returns the layout calibrated for the 720p broadcast overlay:
// subtitles in the upper-middle band, the player label in the lower-left strip.
func Default() *Config {
	return &Config{
		CredentialsDir: "cred",
		SubtitleZone: models.Zone{
			Name:        "subtitle",
			TopLeft:     models.Point{X: 95, Y: 143},
			BottomRight: models.Point{X: 673, Y: 393},
		},
		PlayerZone: models.Zone{
			Name:        "player",
			TopLeft:     models.Point{X: 21, Y: 461},
			BottomRight: models.Point{X: 627, Y: 496},
		},
		LanguageHint: "ja",
		JPEGQuality:  95,
		Workers:      runtime.NumCPU(),
		Backend:      BackendGRPC,
		Endpoint:     DefaultEndpoint,
		Format:       FormatJSON,
		DPI:          72,
	}
}

// Load overlays the YAML file at path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.SubtitleZone.Name = "subtitle"
	cfg.PlayerZone.Name = "player"
	return cfg, nil
}

func (c *Config) Validate() error {
	for _, z := range []models.Zone{c.SubtitleZone, c.PlayerZone} {
		if z.TopLeft.X >= z.BottomRight.X || z.TopLeft.Y >= z.BottomRight.Y {
			return fmt.Errorf("zone %s: top-left %v must be above and left of bottom-right %v", z.Name, z.TopLeft, z.BottomRight)
		}
	}
	if c.LanguageHint == "" {
		return fmt.Errorf("language hint must not be empty")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality %d out of range 1..100", c.JPEGQuality)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.DPI < 1 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	switch c.Backend {
	case BackendGRPC, BackendREST:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Format {
	case FormatJSON, FormatYAML, FormatText:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
