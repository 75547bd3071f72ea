package config

import (
	"context"
	"math"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/model"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const (
	DefaultConfigFile = "config.yaml"
	DefaultDBFile     = "eco_indicator.sqlite"

	DefaultBrightness      = 10
	DefaultHighPrice       = 15.0
	DefaultLowSlotDuration = 3.0
)

type DisplayType string

const (
	DisplayBlinkt   DisplayType = "blinkt"
	DisplayInkyPHAT DisplayType = "inkyphat"
)

type Mode string

const (
	ModeAgileImport Mode = "agile_import"
	ModeAgileExport Mode = "agile_export"
	// ModeAgilePrice is the older name for agile_import.
	ModeAgilePrice Mode = "agile_price"
	ModeCarbon     Mode = "carbon"
	ModeTracker    Mode = "tracker"
)

// IsAgile is true for every mode that reads Agile unit rates.
func (m Mode) IsAgile() bool {
	return m == ModeAgileImport || m == ModeAgileExport || m == ModeAgilePrice
}

// Field is the store column holding the values this mode displays.
func (m Mode) Field() model.Field {
	switch {
	case m.IsAgile(), m == ModeTracker:
		return model.FieldPrice
	case m == ModeCarbon:
		return model.FieldCarbon
	}
	return model.FieldUndefined
}

type Config struct {
	DisplayType DisplayType `yaml:"DisplayType"`
	Mode        Mode        `yaml:"Mode"`
	DNORegion   string      `yaml:"DNORegion"`
	AgileCap    int         `yaml:"AgileCap"`
	Blinkt      Blinkt      `yaml:"Blinkt"`
	InkyPHAT    InkyPHAT    `yaml:"InkyPHAT"`
	MQTT        *MQTT       `yaml:"MQTT,omitempty"`
}

type Blinkt struct {
	Brightness int          `yaml:"Brightness"`
	Colours    ColourLevels `yaml:"Colours"`
}

// BrightnessFraction is Brightness as the 0..1 value the strip driver takes.
func (b *Blinkt) BrightnessFraction() float64 {
	return float64(b.Brightness) / 100
}

type InkyPHAT struct {
	HighPrice       float64 `yaml:"HighPrice"`
	LowSlotDuration float64 `yaml:"LowSlotDuration"`
}

// LowSlots is LowSlotDuration counted in half-hour slots.
func (i *InkyPHAT) LowSlots() int {
	return int(2 * i.LowSlotDuration)
}

type MQTT struct {
	Broker   string `yaml:"Broker"`
	Topic    string `yaml:"Topic"`
	ClientID string `yaml:"ClientID"`
}

// Paths are the file locations a run works with, settable from the environment.
type Paths struct {
	Config   string
	DB       string
	LogLevel string
}

// LoadEnv reads an optional .env file and returns the paths, falling back to
// the given defaults for anything unset.
func LoadEnv(ctx context.Context, configFile, dbFile string) Paths {
	logger := utils.GetLogger(ctx)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("load .env failed", zap.Error(err))
	}

	paths := Paths{Config: configFile, DB: dbFile}
	if v := os.Getenv("ECO_INDICATOR_CONFIG"); v != "" {
		paths.Config = v
	}
	if v := os.Getenv("ECO_INDICATOR_DB"); v != "" {
		paths.DB = v
	}
	paths.LogLevel = os.Getenv("ECO_INDICATOR_LOG_LEVEL")
	return paths
}

func Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	return Parse(ctx, data)
}

// Parse decodes and validates a config document. Out of range soft settings
// are replaced with defaults and logged; missing or unknown display type,
// mode or region are errors.
func Parse(ctx context.Context, data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "error reading configuration")
	}
	if err := cfg.validate(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate(ctx context.Context) error {
	logger := utils.GetLogger(ctx)

	switch c.DisplayType {
	case "":
		return errors.Wrap(common.ErrorUnknownDisplay, "DisplayType not found in config")
	case DisplayBlinkt:
		logger.Info("Blinkt! display selected")
		if c.Blinkt.Brightness < 5 || c.Blinkt.Brightness > 100 {
			logger.Warn("misconfigured brightness, using default",
				zap.Int("brightness", c.Blinkt.Brightness), zap.Int("default", DefaultBrightness))
			c.Blinkt.Brightness = DefaultBrightness
		}
		if len(c.Blinkt.Colours) < 2 {
			return errors.Wrap(common.ErrorInvalidValue, "less than two colour levels found in config")
		}
	case DisplayInkyPHAT:
		logger.Info("Inky pHAT display selected")
		if c.InkyPHAT.HighPrice < 0 || c.InkyPHAT.HighPrice > 35 {
			logger.Warn("misconfigured high price, using default",
				zap.Float64("highPrice", c.InkyPHAT.HighPrice), zap.Float64("default", DefaultHighPrice))
			c.InkyPHAT.HighPrice = DefaultHighPrice
		}
		if !validLowSlotDuration(c.InkyPHAT.LowSlotDuration) {
			logger.Warn("misconfigured low slot duration, must be 0.5 to 6 hours in half hour steps",
				zap.Float64("lowSlotDuration", c.InkyPHAT.LowSlotDuration),
				zap.Float64("default", DefaultLowSlotDuration))
			c.InkyPHAT.LowSlotDuration = DefaultLowSlotDuration
		}
	default:
		return errors.Wrapf(common.ErrorUnknownDisplay, "DisplayType %q", c.DisplayType)
	}

	switch {
	case c.Mode == "":
		return errors.Wrap(common.ErrorUnknownMode, "Mode not found in config")
	case c.Mode.IsAgile():
		logger.Info("working in Octopus Agile price mode", zap.String("mode", string(c.Mode)))
	case c.Mode == ModeCarbon:
		logger.Info("working in carbon intensity mode")
	case c.Mode == ModeTracker:
		logger.Info("working in Octopus Tracker mode")
	default:
		return errors.Wrapf(common.ErrorUnknownMode, "Mode %q", c.Mode)
	}

	if c.DNORegion == "" {
		return errors.Wrap(common.ErrorUnknownRegion, "DNORegion not found in config")
	}

	if c.MQTT != nil && (c.MQTT.Broker == "" || c.MQTT.Topic == "") {
		return errors.Wrap(common.ErrorInvalidValue, "MQTT needs both Broker and Topic")
	}
	return nil
}

func validLowSlotDuration(hours float64) bool {
	return hours >= 0.5 && hours <= 6 && math.Mod(hours, 0.5) == 0
}
