// Copyright 2023 Tao Wang <wangtaoking1@qq.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFlagName = "config"

var cfgFile string

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&cfgFile, configFlagName, "c", cfgFile, "Read configuration from specified `FILE`, "+
		"support JSON, TOML, YAML, HCL, or Java properties formats.")
}

// bindEnv maps flag "server.bind-port" of app "psionic" to
// PSIONIC_SERVER_BIND_PORT.
func bindEnv(appName string) {
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix(appName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// loadConfig reads the config file. Without an explicit file, a missing
// config in the search paths is not an error.
func loadConfig(appName, file string) error {
	if file != "" {
		viper.SetConfigFile(file)

		return errors.Wrapf(viper.ReadInConfig(), "read config file %s", file)
	}

	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, "."+appName))
	}
	viper.AddConfigPath(filepath.Join("/etc", appName))
	viper.SetConfigName(appName)

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}

	return errors.Wrap(err, "read config")
}

func envPrefix(appName string) string {
	return strings.ReplaceAll(strings.ToUpper(appName), "-", "_")
}
