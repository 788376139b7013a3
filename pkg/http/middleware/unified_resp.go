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
	"github.com/go-arcade/iam/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// Locals keys read by UnifiedResponseMiddleware.
const (
	DETAIL    = "detail"
	OPERATION = "operation"
)

// UnifiedResponseMiddleware wraps handler results stored under DETAIL or
// OPERATION into the {code, detail, msg} envelope.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		if detail := c.Locals(DETAIL); detail != nil {
			return http.WithRepJSON(c, detail)
		}
		// 业务逻辑正确, 无响应数据, 只返回结果
		if c.Locals(OPERATION) != nil {
			return http.WithRepNotDetail(c)
		}
		return nil
	}
}
