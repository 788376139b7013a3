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

package middleware

import (
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/http/auth"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeErr(t *testing.T, resp *nethttp.Response) http.ResponseErr {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out http.ResponseErr
	require.NoError(t, sonic.Unmarshal(body, &out))
	return out
}

func newIssuer(t *testing.T) *jwt.Issuer {
	t.Helper()
	i, err := jwt.NewIssuer("middleware-test-secret", "iam", time.Hour)
	require.NoError(t, err)
	return i
}

func TestRequestMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMiddleware())
	var seen string
	app.Get("/test", func(c *fiber.Ctx) error {
		seen = c.Get(HeaderRequestId)
		return c.SendString("ok")
	})

	t.Run("keeps existing", func(t *testing.T) {
		req := httptest.NewRequest(nethttp.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestId, "existing-request-id-12345")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "existing-request-id-12345", seen)
		assert.Equal(t, "existing-request-id-12345", resp.Header.Get(HeaderRequestId))
	})

	t.Run("generates uuid", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/test", nil))
		require.NoError(t, err)
		_, err = uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, resp.Header.Get(HeaderRequestId))
	})
}

func TestAuthorizationMiddleware(t *testing.T) {
	issuer := newIssuer(t)
	valid, _, err := issuer.Issue("dispatcher", []string{"DISPATCH"}, 0)
	require.NoError(t, err)
	expired, _, err := issuer.Issue("dispatcher", []string{"DISPATCH"}, -time.Minute)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(AuthorizationMiddleware(issuer, []string{"/auth/login"}))
	var principal auth.Principal
	handler := func(c *fiber.Ctx) error {
		principal, _ = auth.FromContext(c.UserContext())
		return c.SendString("ok")
	}
	app.Get("/auth/login", handler)
	app.Get("/auth/me", handler)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantReason string
		wantSub    string
	}{
		{"permit all", "/auth/login", "", fiber.StatusOK, "", ""},
		{"missing header", "/auth/me", "", fiber.StatusUnauthorized, "UNAUTHORIZED", ""},
		{"wrong scheme", "/auth/me", "Basic " + valid, fiber.StatusUnauthorized, "UNAUTHORIZED", ""},
		{"expired", "/auth/me", "Bearer " + expired, fiber.StatusUnauthorized, "TOKEN_INVALID", ""},
		{"garbage", "/auth/me", "Bearer abc.def.ghi", fiber.StatusUnauthorized, "TOKEN_INVALID", ""},
		{"valid", "/auth/me", "Bearer " + valid, fiber.StatusOK, "", "dispatcher"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal = auth.Principal{}
			req := httptest.NewRequest(nethttp.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantReason != "" {
				body := decodeErr(t, resp)
				assert.Equal(t, tt.wantReason, body.Reason)
				assert.Equal(t, tt.path, body.Path)
			}
			assert.Equal(t, tt.wantSub, principal.Subject)
		})
	}
}

func TestRequireRole(t *testing.T) {
	issuer := newIssuer(t)
	admin, _, err := issuer.Issue("root", []string{"ADMIN"}, 0)
	require.NoError(t, err)
	user, _, err := issuer.Issue("dispatcher", []string{"DISPATCH"}, 0)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(AuthorizationMiddleware(issuer, nil))
	app.Get("/admin/users", RequireRole("ADMIN"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	do := func(token string) *nethttp.Response {
		req := httptest.NewRequest(nethttp.MethodGet, "/admin/users", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, fiber.StatusOK, do(admin).StatusCode)
	resp := do(user)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeErr(t, resp).Reason)
}

func TestUnifiedResponseMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(UnifiedResponseMiddleware())
	app.Get("/detail", func(c *fiber.Ctx) error {
		c.Locals(DETAIL, map[string]string{"username": "dispatcher"})
		return nil
	})
	app.Get("/op", func(c *fiber.Ctx) error {
		c.Locals(OPERATION, true)
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/detail", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"code":200,"detail":{"username":"dispatcher"},"msg":"Request Success"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/op", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"code":200,"msg":"Request Success"}`, string(body))
}

func TestExceptionMiddleware(t *testing.T) {
	app := fiber.New(http.NewFiberConfig(http.Http{}))
	app.Use(ExceptionMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeErr(t, resp)
	assert.Equal(t, "INTERNAL", body.Reason)
	assert.Equal(t, http.InternalError.Code, body.ErrCode)
}
