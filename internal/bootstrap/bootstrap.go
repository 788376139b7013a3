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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-arcade/iam/internal/engine/config"
	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/internal/engine/service"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/go-arcade/iam/pkg/errs"
	httpx "github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/metrics"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Conf     *config.AppConfig
	Logger   *zap.Logger
	Tracer   *sdktrace.TracerProvider
	DB       database.IDatabase
	Services *service.Services
	Http     *httpx.Server
	Metrics  *metrics.Server
}

func NewApp(
	conf *config.AppConfig,
	logger *zap.Logger,
	tracer *sdktrace.TracerProvider,
	db database.IDatabase,
	services *service.Services,
	httpSrv *httpx.Server,
	metricsSrv *metrics.Server,
) *App {
	return &App{
		Conf:     conf,
		Logger:   logger,
		Tracer:   tracer,
		DB:       db,
		Services: services,
		Http:     httpSrv,
		Metrics:  metricsSrv,
	}
}

// InitAppFunc builds the App for a config path, see cmd/iam/wire.go.
type InitAppFunc func(configPath string) (*App, func(), error)

// Migrate creates or updates the identity store tables.
func (a *App) Migrate() error {
	if err := database.AutoMigrate(a.DB.Database(), model.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	a.Logger.Info("database migrated", zap.Int("tables", len(model.Models())))
	return nil
}

// CreateUser creates an account with the given roles. Missing roles are
// created first so the first administrator can be bootstrapped.
func (a *App) CreateUser(ctx context.Context, username, password string, roleCodes []string) (*model.Profile, error) {
	codes := make([]string, 0, len(roleCodes))
	for _, code := range roleCodes {
		code = model.NormalizeCode(code)
		if code == "" {
			continue
		}
		_, err := a.Services.Role.Create(ctx, &model.CreateRoleReq{Code: code, Name: code})
		if err != nil && !errors.Is(err, errs.ErrDuplicateCode) {
			return nil, err
		}
		codes = append(codes, code)
	}
	return a.Services.User.CreateUser(ctx, &model.CreateUserReq{
		Username:  username,
		Password:  password,
		RoleCodes: &codes,
	})
}

// SplitCodes splits a comma separated code list.
func SplitCodes(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Run starts the HTTP and metrics listeners and blocks until SIGINT or
// SIGTERM, then shuts both down.
func Run(app *App, cleanup func()) error {
	defer cleanup()
	logger := app.Logger.Sugar()

	if err := app.Metrics.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case err, ok := <-app.Http.Start():
		if ok && err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Infow("received shutdown signal, shutting down gracefully")
	}

	if err := app.Http.Shutdown(context.Background()); err != nil {
		logger.Errorw("http server shutdown error", "error", err)
	}
	if err := app.Metrics.Stop(context.Background()); err != nil {
		logger.Errorw("metrics server shutdown error", "error", err)
	}
	logger.Info("server shutdown complete")
	return runErr
}
