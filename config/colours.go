package config

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ColourLevel is one LED threshold. A slot takes the colour of the first level
// whose threshold it reaches, so levels are listed from highest to lowest.
type ColourLevel struct {
	Key    string  `yaml:"-"`
	Name   string  `yaml:"Name"`
	R      uint8   `yaml:"R"`
	G      uint8   `yaml:"G"`
	B      uint8   `yaml:"B"`
	Price  float64 `yaml:"Price"`
	Carbon float64 `yaml:"Carbon"`
}

// ColourLevels keeps the order the levels were written in the config file.
type ColourLevels []ColourLevel

func (c *ColourLevels) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var items yaml.MapSlice
	if err := unmarshal(&items); err != nil {
		return err
	}

	levels := make(ColourLevels, 0, len(items))
	for _, item := range items {
		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return errors.Wrapf(err, "colour level %v", item.Key)
		}
		level := ColourLevel{}
		if err := yaml.Unmarshal(raw, &level); err != nil {
			return errors.Wrapf(err, "colour level %v", item.Key)
		}
		level.Key = fmt.Sprintf("%v", item.Key)
		if level.Name == "" {
			level.Name = level.Key
		}
		levels = append(levels, level)
	}
	*c = levels
	return nil
}

// Threshold is the level's lower bound for the given mode.
func (l *ColourLevel) Threshold(mode Mode) float64 {
	if mode == ModeCarbon {
		return l.Carbon
	}
	return l.Price
}

// Match returns the first level whose threshold value reaches.
func (c ColourLevels) Match(mode Mode, value float64) (*ColourLevel, bool) {
	for i := range c {
		if value >= c[i].Threshold(mode) {
			return &c[i], true
		}
	}
	return nil, false
}
