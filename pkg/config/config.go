package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/dbehnke/viterbi224/pkg/viterbi"
)

// Config represents the named decoder profiles an operator can load from
// disk, plus which one a caller gets when it asks for "the default".
type Config struct {
	Default  string             `mapstructure:"default"`
	Profiles map[string]Profile `mapstructure:"profiles"`
}

// Profile mirrors viterbi.Profile field-for-field, but with mapstructure
// tags so it can be unmarshaled from YAML/env by viper. K itself has no
// field here: the decoder's constraint length is a fixed package constant,
// not a configuration knob.
type Profile struct {
	Name            string `mapstructure:"name"`
	Poly1           uint32 `mapstructure:"poly1"`
	Poly2           uint32 `mapstructure:"poly2"`
	G1Flip          bool   `mapstructure:"g1_flip"`
	G2Flip          bool   `mapstructure:"g2_flip"`
	Len             int    `mapstructure:"len"`
	RenormThreshold int16  `mapstructure:"renorm_threshold"`
}

// ToViterbi converts a Profile into the viterbi.Profile the decoder
// constructor expects.
func (p Profile) ToViterbi() viterbi.Profile {
	return viterbi.Profile{
		Name:            p.Name,
		Poly1:           p.Poly1,
		Poly2:           p.Poly2,
		G1Flip:          p.G1Flip,
		G2Flip:          p.G2Flip,
		Len:             p.Len,
		RenormThreshold: p.RenormThreshold,
	}
}

// fromViterbi converts a viterbi.Profile into the mapstructure-tagged
// Profile used for the shipped default preset.
func fromViterbi(p viterbi.Profile) Profile {
	return Profile{
		Name:            p.Name,
		Poly1:           p.Poly1,
		Poly2:           p.Poly2,
		G1Flip:          p.G1Flip,
		G2Flip:          p.G2Flip,
		Len:             p.Len,
		RenormThreshold: p.RenormThreshold,
	}
}

// Load loads named profiles from file and environment variables. An empty
// configFile falls back to searching "./config.yaml", "./configs/config.yaml",
// and "/etc/viterbi224/config.yaml"; a missing file is not an error, since
// the shipped "default" preset is always present.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/viterbi224")
	}

	viper.SetEnvPrefix("VITERBI224")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file on disk is fine; the default preset still loads.
		} else if os.IsNotExist(err) {
			// Explicitly named file missing is also fine.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults seeds viper with the shipped "default" preset so Load never
// returns a Config with zero profiles, even with no file on disk.
func setDefaults() {
	def := fromViterbi(viterbi.DefaultProfile())
	viper.SetDefault("default", "default")
	viper.SetDefault("profiles.default.name", def.Name)
	viper.SetDefault("profiles.default.poly1", def.Poly1)
	viper.SetDefault("profiles.default.poly2", def.Poly2)
	viper.SetDefault("profiles.default.g1_flip", def.G1Flip)
	viper.SetDefault("profiles.default.g2_flip", def.G2Flip)
	viper.SetDefault("profiles.default.len", def.Len)
	viper.SetDefault("profiles.default.renorm_threshold", def.RenormThreshold)
}

// Resolve looks up a named profile, falling back to cfg.Default when name
// is empty, and converts it to a viterbi.Profile ready for viterbi.New.
func (c *Config) Resolve(name string) (viterbi.Profile, error) {
	if name == "" {
		name = c.Default
	}
	p, ok := c.Profiles[name]
	if !ok {
		return viterbi.Profile{}, fmt.Errorf("config: no profile named %q", name)
	}
	return p.ToViterbi(), nil
}
