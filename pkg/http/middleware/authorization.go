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
	"strings"

	"github.com/go-arcade/iam/pkg/errs"
	"github.com/go-arcade/iam/pkg/http"
	"github.com/go-arcade/iam/pkg/http/auth"
	"github.com/go-arcade/iam/pkg/http/jwt"
	"github.com/go-arcade/iam/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// TokenVerifier verifies a raw bearer token.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	// 按空格分割
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func permitted(path string, permitAll []string) bool {
	for _, prefix := range permitAll {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthorizationMiddleware verifies the bearer token and stores the principal
// in the request UserContext. Paths under a permitAll prefix pass through.
func AuthorizationMiddleware(verifier TokenVerifier, permitAll []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if permitted(c.Path(), permitAll) {
			return c.Next()
		}

		token, ok := BearerToken(c)
		if !ok {
			return http.WithAppErr(c, errs.ErrUnauthorized)
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.WithContext(c.UserContext()).Debugw("token rejected", "path", c.Path(), "error", err)
			return http.WithAppErr(c, errs.ErrTokenInvalid)
		}

		principal := auth.Principal{Subject: claims.Subject, Roles: claims.Roles}
		c.SetUserContext(auth.WithPrincipal(c.UserContext(), principal))
		return c.Next()
	}
}

// RequireRole rejects callers whose token does not carry role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := auth.FromContext(c.UserContext())
		if !ok {
			return http.WithAppErr(c, errs.ErrUnauthorized)
		}
		if !principal.HasRole(role) {
			return http.WithAppErr(c, errs.ErrForbidden.WithMsg("role %s required", role))
		}
		return c.Next()
	}
}
