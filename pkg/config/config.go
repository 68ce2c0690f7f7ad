// Package config loads node-level settings for the sequencer and CLI: the
// admin address, the data directory holding the block log and contract
// descriptor, the default sender used by bare CLI commands, and the
// settlement RPC endpoint.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fvl-lang/fvl/pkg/utils"
)

// Config is the unified node configuration, loaded from a small YAML file
// in the data directory plus environment overrides.
type Config struct {
	AdminAddress  string `mapstructure:"admin_address" json:"admin_address"`
	DataDir       string `mapstructure:"data_dir" json:"data_dir"`
	DefaultSender string `mapstructure:"default_sender" json:"default_sender"`
	RPCURL        string `mapstructure:"rpc_url" json:"rpc_url"`
	LogFormat     string `mapstructure:"log_format" json:"log_format"`
}

// AppConfig holds the configuration loaded via Load.
var AppConfig Config

// defaultDataDir is used when FVL_DATA_DIR and the config file both leave
// DataDir unset.
const defaultDataDir = "./data"

// Load reads config.yaml from dataDir (if present), layers .env and
// FVL_-prefixed environment variables on top, and stores the result in
// AppConfig.
func Load(dataDir string) (*Config, error) {
	_ = godotenv.Load() // optional; missing .env is not an error

	if dataDir == "" {
		dataDir = utils.EnvOrDefault("FVL_DATA_DIR", defaultDataDir)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(dataDir)
	viper.SetDefault("data_dir", dataDir)
	viper.SetDefault("rpc_url", utils.EnvOrDefault("FVL_RPC_URL", "http://127.0.0.1:8545"))
	viper.SetEnvPrefix("FVL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, utils.Wrap(err, "load config")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	AppConfig = cfg
	return &AppConfig, nil
}

// Path returns the path to a named file within the config's data
// directory (the block log, contract descriptor, config file itself).
func (c *Config) Path(name string) string {
	return fmt.Sprintf("%s%c%s", c.DataDir, os.PathSeparator, name)
}

// SetSender persists a new default sender address to the config file in
// the data directory, used by `config set-sender`.
func (c *Config) SetSender(addr string) error {
	c.DefaultSender = addr
	viper.Set("default_sender", addr)
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return utils.Wrap(err, "create data dir")
	}
	return viper.WriteConfigAs(c.Path("config.yaml"))
}
