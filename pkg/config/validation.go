package config

import "fmt"

// validate checks that every named profile in cfg is usable and that
// cfg.Default, if set, names a profile that actually exists. Profile-level
// invariants (non-zero polynomials, positive length) are delegated to
// viterbi.Profile.Validate rather than re-checked here, so the two packages
// never drift out of sync on what makes a profile valid.
func validate(cfg *Config) error {
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("config: no profiles defined")
	}

	for name, p := range cfg.Profiles {
		if err := p.ToViterbi().Validate(); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}

	if cfg.Default != "" {
		if _, ok := cfg.Profiles[cfg.Default]; !ok {
			return fmt.Errorf("config: default profile %q not found among profiles", cfg.Default)
		}
	}

	return nil
}
