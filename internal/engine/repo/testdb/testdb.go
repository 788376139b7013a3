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

// Package testdb opens an isolated in-memory store with the iam schema.
package testdb

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-arcade/iam/internal/engine/model"
	"github.com/go-arcade/iam/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// New returns a fresh migrated database closed at test cleanup. A single
// connection keeps the in-memory database alive and serializes writers.
func New(t testing.TB) database.IDatabase {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), database.GormConfig(database.Database{}))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db, model.Models()...))
	return database.NewGormDB(db)
}

// CountQueries counts the SELECT statements run on db until the returned
// stop func is called.
func CountQueries(t testing.TB, db database.IDatabase) (count *int, stop func()) {
	t.Helper()
	n := 0
	name := "testdb:count_" + t.Name()
	require.NoError(t, db.Database().Callback().Query().After("gorm:query").Register(name, func(*gorm.DB) {
		n++
	}))
	return &n, func() {
		_ = db.Database().Callback().Query().Remove(name)
	}
}
