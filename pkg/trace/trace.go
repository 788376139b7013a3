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
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/iam/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/go-arcade/iam/pkg/trace"

// Conf Trace 配置
type Conf struct {
	// Enabled 是否启用 trace
	Enabled bool `mapstructure:"enabled"`
	// Endpoint OTLP 端点地址（如：localhost:4317 或 localhost:4318）
	Endpoint string `mapstructure:"endpoint"`
	// Protocol 协议类型：grpc 或 http
	Protocol string `mapstructure:"protocol"`
	// ServiceName 服务名称
	ServiceName string `mapstructure:"serviceName"`
	// ServiceVersion 服务版本
	ServiceVersion string `mapstructure:"serviceVersion"`
	// Insecure 是否使用不安全连接
	Insecure bool `mapstructure:"insecure"`
	// Headers 额外的 HTTP 头（仅用于 HTTP 协议）
	Headers map[string]string `mapstructure:"headers"`
	// BatchTimeout 批量发送超时时间（秒）
	BatchTimeout int `mapstructure:"batchTimeout"`
	// ExportTimeout 导出超时时间（秒）
	ExportTimeout int `mapstructure:"exportTimeout"`
	// SampleRatio 采样比例，0 表示全部采样
	SampleRatio float64 `mapstructure:"sampleRatio"`
}

// SetDefaults 设置默认值
func (c *Conf) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "iam"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Protocol == "" {
		c.Protocol = "grpc"
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 5
	}
	if c.ExportTimeout == 0 {
		c.ExportTimeout = 30
	}
	if c.Endpoint == "" {
		if c.Protocol == "grpc" {
			c.Endpoint = "localhost:4317"
		} else {
			c.Endpoint = "localhost:4318"
		}
	}
}

func (c *Conf) sampler() sdktrace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}

// InitTracerProvider installs the global TracerProvider and propagator.
// A disabled Conf still installs an SDK provider without exporter so that
// spans carry valid trace ids for log correlation.
func InitTracerProvider(ctx context.Context, conf Conf) (*sdktrace.TracerProvider, func(), error) {
	conf.SetDefaults()

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	if !conf.Enabled {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(conf.sampler()))
		otel.SetTracerProvider(tp)
		return tp, func() { _ = tp.Shutdown(context.Background()) }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(conf.ServiceName),
			semconv.ServiceVersionKey.String(conf.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := createExporter(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(time.Duration(conf.BatchTimeout)*time.Second),
			sdktrace.WithExportTimeout(time.Duration(conf.ExportTimeout)*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(conf.sampler()),
	)
	otel.SetTracerProvider(tp)

	log.Infow("OpenTelemetry tracing initialized",
		"protocol", conf.Protocol,
		"endpoint", conf.Endpoint,
		"service", conf.ServiceName,
	)

	cleanup := func() {
		shutdownTimeout := min(max(time.Duration(conf.ExportTimeout)*time.Second, 10*time.Second), 30*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			log.Warnw("failed to shutdown TracerProvider", "error", err)
		}
	}
	return tp, cleanup, nil
}

func createExporter(ctx context.Context, conf Conf) (sdktrace.SpanExporter, error) {
	switch conf.Protocol {
	case "grpc":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(conf.Endpoint),
			otlptracegrpc.WithTimeout(time.Duration(conf.ExportTimeout) * time.Second),
		}
		if conf.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(conf.Endpoint),
			otlptracehttp.WithTimeout(time.Duration(conf.ExportTimeout) * time.Second),
		}
		if conf.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(conf.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(conf.Headers))
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", conf.Protocol)
	}
}

// Tracer returns the package tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Start opens a span named name as a child of ctx.
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}
