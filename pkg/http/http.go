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

package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/iam/pkg/log"
	"github.com/go-arcade/iam/pkg/safe"
	"github.com/gofiber/fiber/v2"
)

type Http struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	AccessLog       bool   `mapstructure:"accessLog"`
	BodyLimit       int    `mapstructure:"bodyLimit"`       // 请求体上限（字节）
	ReadTimeout     int    `mapstructure:"readTimeout"`     // 秒
	WriteTimeout    int    `mapstructure:"writeTimeout"`    // 秒
	IdleTimeout     int    `mapstructure:"idleTimeout"`     // 秒
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"` // 秒
	Auth            Auth   `mapstructure:"auth"`
}

// Auth is the token and access control surface.
type Auth struct {
	// Secret signs tokens, raw text or base64
	Secret string `mapstructure:"secret"`
	// Issuer is written to and checked against the iss claim
	Issuer string `mapstructure:"issuer"`
	// ExpireMinutes is the default token lifetime
	ExpireMinutes int `mapstructure:"expireMinutes"`
	// PermitAll lists path prefixes that skip authentication
	PermitAll []string `mapstructure:"permitAll"`
	// AdminRole guards the administrative endpoints
	AdminRole string `mapstructure:"adminRole"`
	// SnapshotCacheSeconds is the snapshot cache ttl, 0 disables caching
	SnapshotCacheSeconds int `mapstructure:"snapshotCacheSeconds"`
}

func (h *Http) SetDefaults() {
	if h.Host == "" {
		h.Host = "0.0.0.0"
	}
	if h.Port == 0 {
		h.Port = 8080
	}
	if h.BodyLimit == 0 {
		h.BodyLimit = 1 << 20
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = 30
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = 30
	}
	if h.IdleTimeout == 0 {
		h.IdleTimeout = 60
	}
	if h.ShutdownTimeout == 0 {
		h.ShutdownTimeout = 10
	}
	h.Auth.SetDefaults()
}

func (a *Auth) SetDefaults() {
	if a.Issuer == "" {
		a.Issuer = "iam"
	}
	if a.ExpireMinutes == 0 {
		a.ExpireMinutes = 120
	}
	if a.AdminRole == "" {
		a.AdminRole = "ADMIN"
	}
	if a.PermitAll == nil {
		a.PermitAll = []string{"/auth/login", "/auth/refresh", "/health", "/version"}
	}
}

// Expire returns the default token lifetime.
func (a Auth) Expire() time.Duration {
	return time.Duration(a.ExpireMinutes) * time.Minute
}

// SnapshotTTL returns the snapshot cache ttl.
func (a Auth) SnapshotTTL() time.Duration {
	return time.Duration(a.SnapshotCacheSeconds) * time.Second
}

// NewFiberConfig renders every unhandled error through WithError.
func NewFiberConfig(cfg Http) fiber.Config {
	return fiber.Config{
		AppName:               "iam",
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(cfg.IdleTimeout) * time.Second,
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          WithError,
	}
}

// Server owns the listener of a fiber app.
type Server struct {
	cfg Http
	app *fiber.App
}

func NewHttp(cfg Http, app *fiber.App) *Server {
	return &Server{cfg: cfg, app: app}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Start listens in the background. errCh receives the listener failure.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	safe.Go("http-server", func() {
		defer close(errCh)
		log.Infow("http server start", "address", s.Addr())
		if err := s.app.Listen(s.Addr()); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	})
	return errCh
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	log.Info("http server shut down gracefully")
	return nil
}
