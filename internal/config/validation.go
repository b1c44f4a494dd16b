package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedNetwork marks a network identifier outside TESTNET/PUBLIC.
var ErrUnsupportedNetwork = errors.New("unsupported network")

var assetCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

// Validate checks the complete configuration before anything is built from
// it.
func Validate(cfg *Config) error {
	switch cfg.Network {
	case NetworkTestnet, NetworkPublic:
	default:
		return fmt.Errorf("%w: %q (expected %s or %s)",
			ErrUnsupportedNetwork, cfg.Network, NetworkTestnet, NetworkPublic)
	}

	if !assetCodePattern.MatchString(cfg.Asset.Code) {
		return fmt.Errorf("asset code %q must be 1-12 alphanumeric characters", cfg.Asset.Code)
	}

	if cfg.IsTestnet() && cfg.FriendbotURL == "" {
		return fmt.Errorf("friendbot_url is required on %s", NetworkTestnet)
	}

	for name, seed := range map[string]string{
		"issuer.seed":      cfg.Issuer.Seed,
		"distributor.seed": cfg.Distributor.Seed,
	} {
		if seed == "" {
			continue
		}
		if len(seed) != 56 || !strings.HasPrefix(seed, "S") {
			return fmt.Errorf("%s does not look like a secret seed", name)
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server.timeout_seconds must be positive")
	}

	switch cfg.History.Backend {
	case "pebble", "goleveldb":
	default:
		return fmt.Errorf("history.backend %q unknown (expected pebble or goleveldb)", cfg.History.Backend)
	}
	switch cfg.History.Compression {
	case "", "none", "lz4":
	default:
		return fmt.Errorf("history.compression %q unknown (expected none or lz4)", cfg.History.Compression)
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path is required")
	}

	if cfg.BalanceCache.Size < 0 {
		return fmt.Errorf("balance_cache.size cannot be negative")
	}
	return nil
}
