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

package service

import (
	"github.com/go-arcade/iam/internal/engine/repo"
	"github.com/go-arcade/iam/pkg/cache"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/go-arcade/iam/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideIssuer,
	ProvideServices,
)

// ProvideIssuer 根据 http.auth 配置创建 token 签发器
func ProvideIssuer(cfg http.Http) (*jwt.Issuer, error) {
	return jwt.NewIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Expire())
}

// ProvideServices 提供统一的 Services 实例
func ProvideServices(
	db database.IDatabase,
	c cache.ICache,
	repos *repo.Repositories,
	issuer *jwt.Issuer,
	m *metrics.AuthMetrics,
	cfg http.Http,
) *Services {
	return NewServices(db, c, repos, issuer, m, cfg.Auth.SnapshotTTL())
}
