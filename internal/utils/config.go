package utils

import (
	"strings"

	"github.com/blagojts/viper"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every setting looked up in the environment,
// e.g. TSBS_QUICK_WORKSPACE for --workspace.
const EnvPrefix = "TSBS_QUICK"

// SetupConfigFile defines the settings for the configuration file support.
// Flags that were set explicitly win, then the environment, then the settings
// file, then flag defaults. An empty file means an optional ./tsbs_quick.* in
// the working directory.
func SetupConfigFile(v *viper.Viper, fs *pflag.FlagSet, file string) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("tsbs_quick")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Ignore error if config file not found.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}
