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

package cache

import (
	"github.com/go-arcade/iam/pkg/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

var ProviderSet = wire.NewSet(ProvideRedis, ProvideICache)

// ProvideRedis returns a nil client when redis is disabled.
func ProvideRedis(conf Redis) (redis.UniversalClient, func(), error) {
	if !conf.Enabled {
		log.Info("redis disabled, snapshot cache off")
		return nil, func() {}, nil
	}
	client, err := NewRedis(conf)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func ProvideICache(client redis.UniversalClient) ICache {
	if client == nil {
		return nil
	}
	return NewRedisCache(client)
}
