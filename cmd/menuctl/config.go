// Config loading for the menuctl CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "MENUS"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeySyncTimeout = "sync_timeout"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"
	cfgKeyListenAddr  = "listen_addr"
	cfgKeyCORSOrigins = "cors_origins"

	defaultBackend    = "sqlite"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultListenAddr = "127.0.0.1:8080"
)

// envKeys can be overridden as MENUS_<KEY>. data_dir is left out because
// MENUS_DATA_DIR ranks below config.yaml and is handled by internal/paths.
var envKeys = []string{cfgKeyBackend, cfgKeySyncTimeout, cfgKeyLogLevel, cfgKeyLogFormat, cfgKeyListenAddr, cfgKeyCORSOrigins}

// fileConfig is the shape of config.yaml.
type fileConfig struct {
	Backend     string   `yaml:"backend"`
	DataDir     string   `yaml:"data_dir,omitempty"`
	SyncTimeout string   `yaml:"sync_timeout,omitempty"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`
	ListenAddr  string   `yaml:"listen_addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Backend:     defaultBackend,
		SyncTimeout: "30s",
		LogLevel:    defaultLogLevel,
		LogFormat:   defaultLogFormat,
		ListenAddr:  defaultListenAddr,
	}
}

const configHeader = `# menuctl configuration
# Every key except data_dir can be overridden with a MENUS_<KEY> variable.
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	def := defaultFileConfig()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeySyncTimeout, def.SyncTimeout)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)
	v.SetDefault(cfgKeyListenAddr, def.ListenAddr)

	v.SetEnvPrefix(envPrefix)
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes the default config.yaml unless one exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return writeConfigFile(path, defaultFileConfig())
}

func writeConfigFile(path string, cfg fileConfig) error {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), body...), 0o644)
}
