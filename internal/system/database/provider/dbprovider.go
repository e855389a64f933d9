/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package provider

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wso2/property-sync-service/internal/system/config"
	"github.com/wso2/property-sync-service/internal/system/database/client"
)

// DBConfig represents the local database configuration.
type DBConfig struct {
	DSN        string
	DriverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBConfig() DBConfig
	GetDBClient(ctx context.Context) (client.DBClientInterface, error)
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	conf config.PostgresConfig
}

// NewDBProvider creates a new instance of DBProvider.
func NewDBProvider(conf config.PostgresConfig) DBProviderInterface {

	return &DBProvider{conf: conf}
}

// GetDBConfig returns the driver name and connection string for the configured data source.
func (d *DBProvider) GetDBConfig() DBConfig {

	sslMode := d.conf.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return DBConfig{
		DriverName: "postgres",
		DSN: fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.conf.Hostname, d.conf.Port, d.conf.Username, d.conf.Password, d.conf.Name, sslMode),
	}
}

// GetDBClient opens and pings a database connection.
func (d *DBProvider) GetDBClient(ctx context.Context) (client.DBClientInterface, error) {

	dbConfig := d.GetDBConfig()
	db, err := sql.Open(dbConfig.DriverName, dbConfig.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	return client.NewDBClient(db), nil
}
