package config

import "github.com/spf13/viper"

// setDefaults seeds viper with the built-in defaults. Explicit config file
// values and MINTD_ environment variables override them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", NetworkTestnet)
	v.SetDefault("horizon_url", "")
	v.SetDefault("friendbot_url", "https://friendbot.stellar.org")

	v.SetDefault("asset.code", "MYTOKEN")

	v.SetDefault("issuer.seed", "")
	v.SetDefault("distributor.seed", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.bind", "")
	v.SetDefault("server.timeout_seconds", 30)

	v.SetDefault("history.backend", "pebble")
	v.SetDefault("history.path", "data/issuances")
	v.SetDefault("history.compression", "none")

	v.SetDefault("balance_cache.size", 128)
	v.SetDefault("balance_cache.ttl_seconds", 5)
}
