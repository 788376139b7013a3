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

package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/internal/engine/repo/testdb"
	"github.com/go-arcade/iam/internal/engine/service"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/go-arcade/iam/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	db := testdb.New(t)
	issuer, err := jwt.NewIssuer("bootstrap-secret", "iam-test", time.Hour)
	require.NoError(t, err)
	services := service.NewServices(db, nil, repo.NewRepositories(db), issuer, metrics.NewAuthMetrics(prometheus.NewRegistry()), 0)
	return NewApp(nil, zap.NewNop(), nil, db, services, nil, nil)
}

func TestSplitCodes(t *testing.T) {
	assert.Equal(t, []string{"ADMIN", "dispatch"}, SplitCodes(" ADMIN, ,dispatch,"))
	assert.Nil(t, SplitCodes(""))
}

func TestApp_MigrateIsIdempotent(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Migrate())
	require.NoError(t, app.Migrate())
}

func TestApp_CreateUserBootstrapsRoles(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	profile, err := app.CreateUser(ctx, "root", "root1234", []string{"admin", ""})
	require.NoError(t, err)
	assert.Equal(t, "root", profile.Username)
	assert.Equal(t, []string{"ADMIN"}, profile.RoleCodes)

	// ADMIN already exists now
	second, err := app.CreateUser(ctx, "ops", "ops12345", []string{"ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, second.RoleCodes)

	resp, err := app.Services.Auth.Login(ctx, &model.LoginReq{Username: "root", Password: "root1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}
