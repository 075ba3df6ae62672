package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Script lists the dialogues rendered by one batch run. Its shared settings
// use the same layout as a Config file, embedded at the top level; items
// override the budget and the output path per dialogue.
type Script struct {
	Config `yaml:",inline"`

	Items []Item `yaml:"items" toml:"items"`
}

// Item is one dialogue of a script.
type Item struct {
	Name   string `yaml:"name" toml:"name"`
	Text   string `yaml:"text" toml:"text"`
	Output string `yaml:"output" toml:"output"`
	// Budget overrides box.budget when positive
	Budget int `yaml:"budget" toml:"budget"`
}

// LoadScript reads a batch script over Defaults. Every item needs an output
// path; a missing name defaults to the item's position.
func LoadScript(path string) (*Script, error) {
	sc := &Script{Config: *Defaults()}
	if err := decodeFile(path, sc); err != nil {
		return nil, err
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks the shared settings and every item.
func (s *Script) Validate() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("%w: script has no items", ErrInvalidConfig)
	}
	for i := range s.Items {
		it := &s.Items[i]
		if it.Name == "" {
			it.Name = fmt.Sprintf("item-%d", i+1)
		}
		if it.Output == "" {
			return fmt.Errorf("%w: item %s has no output", ErrInvalidConfig, it.Name)
		}
		if it.Budget < 0 {
			return fmt.Errorf("%w: item %s budget %d", ErrInvalidConfig, it.Name, it.Budget)
		}
	}
	return nil
}

// ItemConfig returns the settings for one item: the shared settings with the
// item's budget and output applied. When the shared settings name an audio
// file, each item writes its own track next to its output instead.
func (s *Script) ItemConfig(it Item) *Config {
	c := s.Config
	if it.Budget > 0 {
		c.Box.Budget = it.Budget
	}
	c.Output.Path = it.Output
	if c.Audio.Path != "" {
		c.Audio.Path = strings.TrimSuffix(it.Output, filepath.Ext(it.Output)) + ".wav"
	}
	return &c
}
