// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/iam/pkg/cache"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/log"
	"github.com/go-arcade/iam/pkg/metrics"
	"github.com/go-arcade/iam/pkg/trace"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, IAM_HTTP_AUTH_SECRET overrides
// http.auth.secret.
const EnvPrefix = "IAM"

type AppConfig struct {
	Log      log.Conf              `mapstructure:"log"`
	Http     http.Http             `mapstructure:"http"`
	Database database.Database     `mapstructure:"database"`
	Redis    cache.Redis           `mapstructure:"redis"`
	Metrics  metrics.MetricsConfig `mapstructure:"metrics"`
	Trace    trace.Conf            `mapstructure:"trace"`
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		loaded, err := LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})
	return Current()
}

// Current returns the last loaded configuration.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {
	config := newViper()
	config.SetConfigFile(confDir) //文件名
	if err := config.ReadInConfig(); err != nil {
		return AppConfig{}, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var loaded AppConfig
	if err := config.Unmarshal(&loaded); err != nil {
		return AppConfig{}, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	applyDefaults(&loaded)

	// 仅日志级别等非连接类配置可热更新，连接参数需重启
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name)
		var next AppConfig
		if err := config.Unmarshal(&next); err != nil {
			log.Errorw("failed to unmarshal configuration file", "file", e.Name, "error", err)
			return
		}
		applyDefaults(&next)
		mu.Lock()
		cfg = next
		mu.Unlock()
	})
	config.WatchConfig()

	log.Infow("config file loaded", "path", confDir)
	return loaded, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func applyDefaults(c *AppConfig) {
	c.Http.SetDefaults()
	c.Metrics.SetDefaults()
	c.Trace.SetDefaults()
	if c.Log.Output == "" {
		c.Log = *log.SetDefaults()
	}
}
