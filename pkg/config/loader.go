package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/arthur-debert/mcargo/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of configuration environment variables. A double
// underscore separates sections: MCARGO_INSTALL__MAX_ATTEMPTS.
const EnvPrefix = "MCARGO_"

// LoadOptions selects the configuration sources.
type LoadOptions struct {
	// ConfigFile replaces the user config file. Unlike the default location
	// it must exist.
	ConfigFile string

	// ProjectDir is searched for a project config file; "" means the
	// working directory.
	ProjectDir string

	// Overrides are flat dotted keys applied last, e.g. "install.auto".
	Overrides map[string]interface{}

	// Paths defaults to paths.New().
	Paths *paths.Paths
}

// Load builds the effective configuration from all sources and validates it.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	p := opts.Paths
	if p == nil {
		p = paths.New()
	}

	k := koanf.New(".")
	var sources []string

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config, or the explicitly requested file
	userFile := p.ConfigFilePath()
	if opts.ConfigFile != "" {
		userFile = paths.ExpandHome(opts.ConfigFile)
		if _, err := os.Stat(userFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", userFile).
				WithDetail("path", userFile)
		}
	}
	if loaded, err := loadFile(k, userFile); err != nil {
		return nil, err
	} else if loaded {
		sources = append(sources, userFile)
	}

	// 3. Project config
	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	if projectFile := paths.ProjectConfigPath(projectDir); projectFile != "" {
		if _, err := loadFile(k, projectFile); err != nil {
			return nil, err
		}
		sources = append(sources, projectFile)
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 5. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply command line overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}
	cfg.Sources = sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Strs("sources", sources).Msg("Configuration loaded")
	return &cfg, nil
}

// loadFile merges a TOML file into k. A missing file is not an error.
func loadFile(k *koanf.Koanf, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false, nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return true, nil
}

// envKey maps MCARGO_INSTALL__MAX_ATTEMPTS to install.max_attempts.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
