package exporter

import (
	"github.com/goccy/go-yaml"
)

type Config struct {
	Log         bool   `yaml:"log"`
	BindAddress string `yaml:"bindAddress"`
	BindPort    uint16 `yaml:"bindPort"`

	// Period between resource polls in milliseconds.
	Period int `yaml:"period"`

	// Kinds of resources to poll. Every kind is polled when empty.
	Kinds []string `yaml:"kinds"`

	// Procfs is where to look process names up.
	Procfs string `yaml:"procfs"`

	// CommTTL is how long process names are cached for in milliseconds.
	CommTTL int `yaml:"commTTL"`
}

var DefaultConfig = Config{
	Log:         true,
	BindAddress: "127.0.0.1",
	BindPort:    9876,
	Period:      5000,
	Kinds:       []string{"pd", "mr", "cq", "cm_id", "qp"},
	Procfs:      "/proc",
	CommTTL:     30000,
}

func (c *Config) UnmarshalYAML(b []byte) error {
	// Needed to break recursive calls into UnmarshalYAML
	type config Config

	def := config(DefaultConfig)
	def.Kinds = append([]string{}, DefaultConfig.Kinds...)

	if err := yaml.Unmarshal(b, &def); err != nil {
		return err
	}

	*c = Config(def)

	return nil
}
