package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/discoball/internal/particle"
	"github.com/tomz197/discoball/internal/speed"
)

// Tuning is the initialization-time configuration of a session.
// Keys left out of a tuning file keep their defaults.
type Tuning struct {
	MaxSpeed         float64       `yaml:"max_speed"`
	ClickIncrement   float64       `yaml:"click_increment"`
	DecayRate        float64       `yaml:"decay_rate"`
	DecayPeriod      time.Duration `yaml:"decay_period"`
	SpawnPeriod      time.Duration `yaml:"spawn_period"`
	SpawnGap         time.Duration `yaml:"spawn_gap"`
	ParticleLifetime time.Duration `yaml:"particle_lifetime"`
	Symbols          []string      `yaml:"symbols"`
	SpawnRange       []float64     `yaml:"spawn_range"` // [min, max] percent of width
	SpawnOrigin      float64       `yaml:"spawn_origin"`
	MaxLiveParticles int           `yaml:"max_live_particles"`
}

// Default returns the reference tuning.
func Default() Tuning {
	return Tuning{
		MaxSpeed:         DefaultMaxSpeed,
		ClickIncrement:   DefaultClickIncrement,
		DecayRate:        DefaultDecayRate,
		DecayPeriod:      DefaultDecayPeriod,
		SpawnPeriod:      DefaultSpawnPeriod,
		SpawnGap:         DefaultSpawnGap,
		ParticleLifetime: DefaultParticleLifetime,
		Symbols:          append([]string(nil), particle.DefaultCatalog...),
		SpawnRange:       []float64{DefaultSpawnMin, DefaultSpawnMax},
		SpawnOrigin:      DefaultSpawnOrigin,
		MaxLiveParticles: DefaultMaxLiveParticles,
	}
}

// Speed returns the speed controller's share of the tuning.
func (t Tuning) Speed() speed.Config {
	return speed.Config{
		MaxSpeed:       t.MaxSpeed,
		ClickIncrement: t.ClickIncrement,
		DecayRate:      t.DecayRate,
	}
}

// Particles returns the spawner's share of the tuning.
func (t Tuning) Particles() particle.Config {
	var lo, hi float64
	if len(t.SpawnRange) == 2 {
		lo, hi = t.SpawnRange[0], t.SpawnRange[1]
	}
	return particle.Config{
		SpawnPeriod: t.SpawnPeriod,
		SpawnGap:    t.SpawnGap,
		Lifetime:    t.ParticleLifetime,
		Catalog:     t.Symbols,
		RangeMin:    lo,
		RangeMax:    hi,
		Origin:      t.SpawnOrigin,
		MaxLive:     t.MaxLiveParticles,
	}
}

// Validate reports every problem with the tuning at once.
func (t Tuning) Validate() error {
	var errs []error
	if t.DecayPeriod <= 0 {
		errs = append(errs, fmt.Errorf("decay period must be positive, got %v", t.DecayPeriod))
	}
	if len(t.SpawnRange) != 2 {
		errs = append(errs, fmt.Errorf("spawn range needs exactly two values, got %d", len(t.SpawnRange)))
	}
	if err := t.Speed().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := t.Particles().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Parse reads a YAML tuning document on top of the defaults.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(r io.Reader) (Tuning, error) {
	t := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Tuning{}, fmt.Errorf("failed to parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("invalid tuning: %w", err)
	}
	return t, nil
}

// Load reads a YAML tuning file. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("failed to open tuning file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
