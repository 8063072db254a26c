package config

import (
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTStop      = 10.0
	DefaultNT         = 501
	DefaultLambdaA    = 5.0
	DefaultIterations = 20
	DefaultAmplitude  = 0.2
	DefaultTRise      = 1.5
)

type Config struct {
	Model          string      `yaml:"model"`
	TStart         float64     `yaml:"t_start"`
	TStop          float64     `yaml:"t_stop"`
	NT             int         `yaml:"nt"`
	LambdaA        float64     `yaml:"lambda_a"`
	Iterations     int         `yaml:"iterations"`
	StopJT         float64     `yaml:"stop_jt"`
	StoreAllPulses bool        `yaml:"store_all_pulses"`
	Pulse          PulseConfig `yaml:"pulse"`
}

type PulseConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	TRise     float64 `yaml:"t_rise"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "tls",
		TStart:     0,
		TStop:      DefaultTStop,
		NT:         DefaultNT,
		LambdaA:    DefaultLambdaA,
		Iterations: DefaultIterations,
		Pulse: PulseConfig{
			Amplitude: DefaultAmplitude,
			TRise:     DefaultTRise,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Tlist materializes the uniform time grid described by the config.
func (c *Config) Tlist() []float64 {
	n := c.NT
	if n < 2 {
		n = 2
	}
	tlist := make([]float64, n)
	floats.Span(tlist, c.TStart, c.TStop)
	return tlist
}
