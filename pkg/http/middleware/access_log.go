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
	"time"

	"github.com/go-arcade/iam/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// exclude api path
// tips: 这里的路径是不需要记录日志的路径，url为端口后的全部路径
var excludedPaths = []string{
	"/health",
	"/metrics",
}

func skipAccessLog(path string) bool {
	for _, rule := range excludedPaths {
		if before, ok := strings.CutSuffix(rule, "/*"); ok {
			if strings.HasPrefix(path, before) {
				return true
			}
		} else if path == rule {
			return true
		}
	}
	return false
}

// AccessLogMiddleware logs one line per request. Request bodies and the
// Authorization header are never logged.
func AccessLogMiddleware(enabled bool) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		if skipAccessLog(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		requestId, _ := c.Locals("request_id").(string)
		log.WithContext(c.UserContext()).Infow("HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"ip", c.IP(),
			"user_agent", c.Get(fiber.HeaderUserAgent),
			"request_id", requestId,
			"latency", latency.String(),
		)
		return err
	}
}
