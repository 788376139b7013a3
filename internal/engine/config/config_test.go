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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[http]
port = 9000

[http.auth]
secret = "file-secret"
expireMinutes = 30
snapshotCacheSeconds = 15

[database.mysql]
host = "db"
port = "3307"

[redis]
enabled = true
address = "redis:6379"
`

func writeConf(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	c, err := LoadConfigFile(writeConf(t, sample))
	require.NoError(t, err)

	assert.Equal(t, 9000, c.Http.Port)
	assert.Equal(t, "file-secret", c.Http.Auth.Secret)
	assert.Equal(t, 30, c.Http.Auth.ExpireMinutes)
	assert.Equal(t, 15, c.Http.Auth.SnapshotCacheSeconds)
	assert.Equal(t, "db", c.Database.MySQL.Host)
	assert.Equal(t, "3307", c.Database.MySQL.Port)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "redis:6379", c.Redis.Address)

	// defaults
	assert.Equal(t, "iam", c.Http.Auth.Issuer)
	assert.Equal(t, "ADMIN", c.Http.Auth.AdminRole)
	assert.Contains(t, c.Http.Auth.PermitAll, "/auth/login")
	assert.Equal(t, 9090, c.Metrics.Port)
	assert.Equal(t, "iam", c.Trace.ServiceName)
	assert.Equal(t, "stdout", c.Log.Output)
}

func TestLoadConfigFile_EnvOverride(t *testing.T) {
	t.Setenv("IAM_HTTP_AUTH_SECRET", "env-secret")
	c, err := LoadConfigFile(writeConf(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", c.Http.Auth.Secret)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadConfigFile_Repository(t *testing.T) {
	c, err := LoadConfigFile(filepath.Join("..", "..", "..", "conf.d", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Http.Port)
	assert.Equal(t, 120, c.Http.Auth.ExpireMinutes)
	assert.Equal(t, "single", c.Redis.Mode)
}
