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

package database

import (
	"fmt"

	"github.com/go-arcade/iam/pkg/log"
	"github.com/go-arcade/iam/pkg/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// Manager owns the MySQL connection pool
type Manager interface {
	// MySQL returns the MySQL database connection
	MySQL() *gorm.DB

	// Close closes all database connections
	Close() error
}

type managerImpl struct {
	mysql *gorm.DB
}

func (m *managerImpl) MySQL() *gorm.DB {
	return m.mysql
}

func (m *managerImpl) Close() error {
	if m.mysql == nil {
		return nil
	}
	sqlDB, err := m.mysql.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL: %w", err)
	}
	return nil
}

// NewManager creates a new database manager with a MySQL connection
func NewManager(cfg Database) (Manager, error) {
	mysqlDB, err := newMySQLConnection(cfg.MySQL, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}
	log.Info("MySQL database connected successfully")

	if err := mysqlDB.Use(trace.NewGormPlugin()); err != nil {
		log.Warnw("failed to register OpenTelemetry gorm plugin (mysql)", "error", err)
	}

	return &managerImpl{mysql: mysqlDB}, nil
}

// GormConfig returns the gorm configuration shared by every dialector.
// Unique constraint violations surface as gorm.ErrDuplicatedKey.
func GormConfig(cfg Database) *gorm.Config {
	var gormLogger gormlogger.Interface
	if cfg.OutPut {
		gormLogger = NewGormLoggerAdapter(gormlogger.Config{
			SlowThreshold:             GetSlowThreshold(cfg.SlowThreshold),
			LogLevel:                  gormlogger.Info,
			Colorful:                  false,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}, gormlogger.Info)
	} else {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	return &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dataTablePrefix,
			SingularTable: true,
		},
	}
}

// newMySQLConnection creates a MySQL connection using GORM with DBResolver support
func newMySQLConnection(mysqlCfg MySQLConfig, commonCfg Database) (*gorm.DB, error) {
	defaultDSN := buildMySQLDSN(mysqlCfg.User, mysqlCfg.Password, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.DBName)

	db, err := gorm.Open(mysql.Open(defaultDSN), GormConfig(commonCfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	hasPrimary := len(mysqlCfg.Primary) > 0
	hasReplicas := len(mysqlCfg.Replicas) > 0

	if hasPrimary || hasReplicas {
		resolverConfig := dbresolver.Config{
			TraceResolverMode: commonCfg.OutPut,
		}
		if hasPrimary {
			primaryDialectors, err := buildDialectors(mysqlCfg.Primary)
			if err != nil {
				return nil, fmt.Errorf("failed to build primary dialectors: %w", err)
			}
			resolverConfig.Sources = primaryDialectors
		}
		if hasReplicas {
			replicasDialectors, err := buildDialectors(mysqlCfg.Replicas)
			if err != nil {
				return nil, fmt.Errorf("failed to build replicas dialectors: %w", err)
			}
			resolverConfig.Replicas = replicasDialectors
		}

		err = db.Use(dbresolver.Register(resolverConfig).
			SetConnMaxIdleTime(GetConnMaxIdleTime(commonCfg.MaxIdleTime)).
			SetConnMaxLifetime(GetConnMaxLifetime(commonCfg.MaxLifetime)).
			SetMaxIdleConns(commonCfg.MaxIdleConns).
			SetMaxOpenConns(commonCfg.MaxOpenConns))
		if err != nil {
			return nil, fmt.Errorf("failed to register DBResolver plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(commonCfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(commonCfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(commonCfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(commonCfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if hasPrimary || hasReplicas {
		log.Info("MySQL database connected with DBResolver (read-write separation enabled)")
	}

	return db, nil
}
