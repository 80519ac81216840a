// Package config loads retry profiles from a YAML file and registers them
// into a profile registry. The core defines only the profile shape; this
// package is the loading mechanism used by process entry points.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/limco/steadfast/profile"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s"
// or "2m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// ProfileConfig is the YAML shape of one profile.
type ProfileConfig struct {
	Name          string   `yaml:"name"`
	BaseDelay     Duration `yaml:"base_delay"`
	MaxDelay      Duration `yaml:"max_delay"`
	MaxRetries    int      `yaml:"max_retries"`
	BackoffFactor float64  `yaml:"backoff_factor"`
	Classifier    string   `yaml:"classifier"`

	Jitter *struct {
		Low  float64 `yaml:"low"`
		High float64 `yaml:"high"`
	} `yaml:"jitter"`

	Session *struct {
		MaxAttempts int        `yaml:"max_attempts"`
		Schedule    []Duration `yaml:"schedule"`
	} `yaml:"session"`
}

// File is the root of a profile configuration file.
type File struct {
	Profiles []ProfileConfig `yaml:"profiles"`
}

// Load reads and parses a profile configuration file. Environment variable
// references in the file ($VAR or ${VAR}) are expanded before parsing.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse parses raw YAML into a File.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &f, nil
}

// Apply converts and registers every profile into reg. It stops at the
// first registration failure (invalid profile or duplicate name).
func (f *File) Apply(reg *profile.Registry) error {
	for _, pc := range f.Profiles {
		if err := reg.Register(pc.Profile()); err != nil {
			return fmt.Errorf("config: profile %q: %w", pc.Name, err)
		}
	}
	return nil
}

// Profile converts the YAML shape to a profile.Profile. Validation and
// defaulting happen in Normalize at registration time.
func (pc ProfileConfig) Profile() profile.Profile {
	p := profile.Profile{
		Name: pc.Name,
		Retry: profile.Retry{
			BaseDelay:     time.Duration(pc.BaseDelay),
			MaxDelay:      time.Duration(pc.MaxDelay),
			MaxRetries:    pc.MaxRetries,
			BackoffFactor: pc.BackoffFactor,
			Classifier:    pc.Classifier,
		},
	}
	if pc.Jitter != nil {
		p.Retry.Jitter = profile.JitterRange{Low: pc.Jitter.Low, High: pc.Jitter.High}
	}
	if pc.Session != nil {
		p.Session.MaxAttempts = pc.Session.MaxAttempts
		p.Session.Schedule = make([]time.Duration, len(pc.Session.Schedule))
		for i, d := range pc.Session.Schedule {
			p.Session.Schedule[i] = time.Duration(d)
		}
	}
	return p
}
