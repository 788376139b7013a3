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

	"github.com/go-arcade/iam/pkg/trace"
	"github.com/google/wire"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ProviderSet 提供应用层相关的依赖
var ProviderSet = wire.NewSet(ProvideTracerProvider, NewApp)

// ProvideTracerProvider 初始化全局 TracerProvider
func ProvideTracerProvider(conf trace.Conf) (*sdktrace.TracerProvider, func(), error) {
	return trace.InitTracerProvider(context.Background(), conf)
}
