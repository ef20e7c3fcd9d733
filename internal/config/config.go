package config

import "github.com/spf13/viper"

// Config are the runtime settings; defaults overridable through
// STOREFRONT_* environment variables (STOREFRONT_ADDR,
// STOREFRONT_SNAPSHOT_PATH).
type Config struct {
	Addr         string
	SnapshotPath string
}

func Load() *Config {
	v := viper.New()
	v.SetDefault("addr", ":9091")
	v.SetDefault("snapshot_path", "storefront.json")
	v.SetEnvPrefix("storefront")
	v.AutomaticEnv()
	return &Config{
		Addr:         v.GetString("addr"),
		SnapshotPath: v.GetString("snapshot_path"),
	}
}
