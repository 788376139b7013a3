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

package trace

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FiberMiddleware starts a server span per request and stores it in the
// request UserContext so services and gorm inherit it.
func FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), fiberCarrier{c: c})

		route := c.Path()
		ctx, span := Tracer().Start(ctx, c.Method()+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", string(c.Request().URI().RequestURI())),
			attribute.String("net.peer.ip", c.IP()),
		)
		if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
			span.SetAttributes(attribute.String("http.user_agent", ua))
		}

		err := c.Next()

		if requestId, ok := c.Locals("request_id").(string); ok && requestId != "" {
			span.SetAttributes(attribute.String("http.request.id", requestId))
		}
		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}

// fiberCarrier adapts request headers to propagation.TextMapCarrier.
type fiberCarrier struct {
	c *fiber.Ctx
}

func (f fiberCarrier) Get(key string) string {
	return f.c.Get(key)
}

func (f fiberCarrier) Set(key, value string) {
	f.c.Set(key, value)
}

func (f fiberCarrier) Keys() []string {
	keys := make([]string, 0)
	f.c.Request().Header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}
