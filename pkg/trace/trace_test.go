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
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return sr
}

func TestConf_SetDefaults(t *testing.T) {
	c := Conf{}
	c.SetDefaults()
	assert.Equal(t, "iam", c.ServiceName)
	assert.Equal(t, "grpc", c.Protocol)
	assert.Equal(t, "localhost:4317", c.Endpoint)

	h := Conf{Protocol: "http"}
	h.SetDefaults()
	assert.Equal(t, "localhost:4318", h.Endpoint)
}

func TestInitTracerProvider_Disabled(t *testing.T) {
	tp, cleanup, err := InitTracerProvider(context.Background(), Conf{})
	require.NoError(t, err)
	defer cleanup()

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
}

func TestInitTracerProvider_UnknownProtocol(t *testing.T) {
	_, _, err := InitTracerProvider(context.Background(), Conf{Enabled: true, Protocol: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestFiberMiddleware_SetsUserContextSpan(t *testing.T) {
	sr := installRecorder(t)

	app := fiber.New()
	app.Use(FiberMiddleware())
	var seen trace.SpanContext
	app.Get("/ping", func(c *fiber.Ctx) error {
		seen = trace.SpanContextFromContext(c.UserContext())
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, seen.IsValid())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /ping", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
}
