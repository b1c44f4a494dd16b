// Package config loads the mintd configuration from defaults, an optional
// TOML file and MINTD_-prefixed environment variables, in that priority
// order.
package config

import (
	"github.com/stellar/go/network"
)

// Stellar network identifiers accepted in the network setting.
const (
	NetworkTestnet = "TESTNET"
	NetworkPublic  = "PUBLIC"
)

// Default Horizon endpoints per network.
const (
	HorizonTestnetURL = "https://horizon-testnet.stellar.org"
	HorizonPublicURL  = "https://horizon.stellar.org"
)

// Config is the complete mintd configuration.
type Config struct {
	// Network selects TESTNET or PUBLIC.
	Network string `toml:"network" mapstructure:"network"`

	// HorizonURL overrides the network's default Horizon endpoint.
	HorizonURL string `toml:"horizon_url" mapstructure:"horizon_url"`

	// FriendbotURL is the testnet funding service.
	FriendbotURL string `toml:"friendbot_url" mapstructure:"friendbot_url"`

	Asset        AssetConfig   `toml:"asset" mapstructure:"asset"`
	Issuer       RoleConfig    `toml:"issuer" mapstructure:"issuer"`
	Distributor  RoleConfig    `toml:"distributor" mapstructure:"distributor"`
	Server       ServerConfig  `toml:"server" mapstructure:"server"`
	History      HistoryConfig `toml:"history" mapstructure:"history"`
	BalanceCache CacheConfig   `toml:"balance_cache" mapstructure:"balance_cache"`
}

// AssetConfig describes the one custom asset this instance issues.
type AssetConfig struct {
	// Code is the asset code, 1-12 alphanumeric characters.
	Code string `toml:"code" mapstructure:"code"`
}

// RoleConfig optionally pre-configures a role with an existing secret seed.
// A set seed skips generation and funding for that role. Seeds are never
// echoed back by any interface.
type RoleConfig struct {
	Seed string `toml:"seed" mapstructure:"seed"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port           int    `toml:"port" mapstructure:"port"`
	Bind           string `toml:"bind" mapstructure:"bind"`
	TimeoutSeconds int    `toml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// HistoryConfig configures the issuance record store.
type HistoryConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// CacheConfig configures the balance snapshot cache. Size 0 disables it.
type CacheConfig struct {
	Size       int `toml:"size" mapstructure:"size"`
	TTLSeconds int `toml:"ttl_seconds" mapstructure:"ttl_seconds"`
}

// IsTestnet reports whether the configured network is the test network.
func (c *Config) IsTestnet() bool {
	return c.Network == NetworkTestnet
}

// NetworkPassphrase returns the passphrase for the configured network. The
// network identifier is validated at load time, so this only sees the two
// supported values.
func (c *Config) NetworkPassphrase() string {
	if c.Network == NetworkPublic {
		return network.PublicNetworkPassphrase
	}
	return network.TestNetworkPassphrase
}

// ResolvedHorizonURL returns the explicit Horizon override or the network
// default.
func (c *Config) ResolvedHorizonURL() string {
	if c.HorizonURL != "" {
		return c.HorizonURL
	}
	if c.Network == NetworkPublic {
		return HorizonPublicURL
	}
	return HorizonTestnetURL
}
