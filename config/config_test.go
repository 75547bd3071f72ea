package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/common"
	"github.com/uyouii/eco-indicator/model"
)

const blinktConfig = `
DisplayType: blinkt
Mode: carbon
DNORegion: Z
Blinkt:
  Brightness: 200
  Colours:
    high:
      Name: red
      R: 255
      G: 0
      B: 0
      Price: 28
      Carbon: 300
    mid:
      Name: amber
      R: 255
      G: 120
      B: 0
      Price: 17
      Carbon: 180
    low:
      R: 0
      G: 255
      B: 0
      Price: -100
      Carbon: 0
`

const inkyConfig = `
DisplayType: inkyphat
Mode: agile_import
DNORegion: C
AgileCap: 100
InkyPHAT:
  HighPrice: 40
  LowSlotDuration: 2.25
MQTT:
  Broker: tcp://localhost:1883
  Topic: home/eco
`

func TestParseBlinkt(t *testing.T) {
	cfg, err := Parse(context.Background(), []byte(blinktConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Blinkt.Brightness != DefaultBrightness {
		t.Fatalf("brightness: got %d want default %d", cfg.Blinkt.Brightness, DefaultBrightness)
	}
	if len(cfg.Blinkt.Colours) != 3 {
		t.Fatalf("colours: got %d levels", len(cfg.Blinkt.Colours))
	}
	wantOrder := []string{"red", "amber", "low"}
	for i, name := range wantOrder {
		if cfg.Blinkt.Colours[i].Name != name {
			t.Fatalf("level %d: got %q want %q", i, cfg.Blinkt.Colours[i].Name, name)
		}
	}
	if cfg.Mode.Field() != model.FieldCarbon {
		t.Fatalf("field: got %q", cfg.Mode.Field())
	}
	if cfg.MQTT != nil {
		t.Fatalf("unexpected MQTT block %+v", cfg.MQTT)
	}
}

func TestColourMatch(t *testing.T) {
	cfg, err := Parse(context.Background(), []byte(blinktConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tests := []struct {
		mode  Mode
		value float64
		want  string
	}{
		{ModeCarbon, 350, "red"},
		{ModeCarbon, 180, "amber"},
		{ModeCarbon, 12, "low"},
		{ModeAgileImport, 17.5, "amber"},
		{ModeAgileImport, -4, "low"},
	}
	for _, tt := range tests {
		level, ok := cfg.Blinkt.Colours.Match(tt.mode, tt.value)
		if !ok || level.Name != tt.want {
			t.Errorf("Match(%s, %v) = %+v, want %s", tt.mode, tt.value, level, tt.want)
		}
	}
	if _, ok := cfg.Blinkt.Colours.Match(ModeCarbon, -1); ok {
		t.Errorf("expected no level below every threshold")
	}
}

func TestParseInkyDefaults(t *testing.T) {
	cfg, err := Parse(context.Background(), []byte(inkyConfig))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.InkyPHAT.HighPrice != DefaultHighPrice {
		t.Fatalf("high price: got %v", cfg.InkyPHAT.HighPrice)
	}
	if cfg.InkyPHAT.LowSlotDuration != DefaultLowSlotDuration || cfg.InkyPHAT.LowSlots() != 6 {
		t.Fatalf("low slot duration: got %v", cfg.InkyPHAT.LowSlotDuration)
	}
	if cfg.MQTT == nil || cfg.MQTT.Topic != "home/eco" {
		t.Fatalf("mqtt: got %+v", cfg.MQTT)
	}
	if !cfg.Mode.IsAgile() || cfg.Mode.Field() != model.FieldPrice {
		t.Fatalf("mode: got %q", cfg.Mode)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no display", "Mode: carbon\nDNORegion: Z\n", common.ErrorUnknownDisplay},
		{"bad display", "DisplayType: oled\nMode: carbon\nDNORegion: Z\n", common.ErrorUnknownDisplay},
		{"no mode", "DisplayType: inkyphat\nDNORegion: Z\n", common.ErrorUnknownMode},
		{"bad mode", "DisplayType: inkyphat\nMode: solar\nDNORegion: Z\n", common.ErrorUnknownMode},
		{"no region", "DisplayType: inkyphat\nMode: carbon\n", common.ErrorUnknownRegion},
		{"one colour", "DisplayType: blinkt\nMode: carbon\nDNORegion: Z\nBlinkt:\n  Colours:\n    only:\n      Carbon: 0\n", common.ErrorInvalidValue},
		{"half mqtt", "DisplayType: inkyphat\nMode: carbon\nDNORegion: Z\nMQTT:\n  Broker: tcp://x:1883\n", common.ErrorInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(context.Background(), []byte(tt.doc)); !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(inkyConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DNORegion != "C" || cfg.AgileCap != 100 {
		t.Fatalf("got %+v", cfg)
	}

	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ECO_INDICATOR_CONFIG", "/etc/eco/config.yaml")
	t.Setenv("ECO_INDICATOR_DB", "")
	t.Setenv("ECO_INDICATOR_LOG_LEVEL", "debug")

	paths := LoadEnv(context.Background(), DefaultConfigFile, DefaultDBFile)
	if paths.Config != "/etc/eco/config.yaml" || paths.DB != DefaultDBFile || paths.LogLevel != "debug" {
		t.Fatalf("got %+v", paths)
	}
}
