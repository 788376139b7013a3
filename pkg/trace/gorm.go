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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type gormSpanKey struct{}

type gormSpan struct {
	span  trace.Span
	start time.Time
}

// GormPlugin implements gorm.Plugin, one client span per statement.
type GormPlugin struct {
	// WithQuery records the SQL text
	WithQuery bool
	// System is reported as db.system
	System string
}

// NewGormPlugin returns a plugin that records SQL text for mysql.
func NewGormPlugin() *GormPlugin {
	return &GormPlugin{WithQuery: true, System: "mysql"}
}

// Name returns the plugin name
func (p *GormPlugin) Name() string {
	return "opentelemetry"
}

// Initialize registers before and after callbacks on every processor.
func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("otel:before_create", p.before("create")),
		cb.Query().Before("gorm:query").Register("otel:before_query", p.before("query")),
		cb.Update().Before("gorm:update").Register("otel:before_update", p.before("update")),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("delete")),
		cb.Row().Before("gorm:row").Register("otel:before_row", p.before("row")),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("raw")),

		cb.Create().After("gorm:create").Register("otel:after_create", p.after),
		cb.Query().After("gorm:query").Register("otel:after_query", p.after),
		cb.Update().After("gorm:update").Register("otel:after_update", p.after),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after),
		cb.Row().After("gorm:row").Register("otel:after_row", p.after),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GormPlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil {
			return
		}
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, span := Tracer().Start(ctx, "gorm."+op, trace.WithSpanKind(trace.SpanKindClient))
		span.SetAttributes(
			attribute.String("db.system", p.System),
			attribute.String("db.operation", op),
		)
		db.Statement.Context = context.WithValue(ctx, gormSpanKey{}, &gormSpan{span: span, start: time.Now()})
	}
}

func (p *GormPlugin) after(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Context == nil {
		return
	}
	gs, ok := db.Statement.Context.Value(gormSpanKey{}).(*gormSpan)
	if !ok {
		return
	}
	defer gs.span.End()

	attrs := []attribute.KeyValue{
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
		attribute.Int64("db.duration_ms", time.Since(gs.start).Milliseconds()),
	}
	if db.Statement.Table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", db.Statement.Table))
	}
	if p.WithQuery {
		if sql := db.Statement.SQL.String(); sql != "" {
			attrs = append(attrs, attribute.String("db.statement", sql))
		}
	}
	gs.span.SetAttributes(attrs...)

	if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		gs.span.SetStatus(codes.Error, err.Error())
		gs.span.RecordError(err)
	}
}
