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

//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/wso2/property-sync-service/internal/docstore/postgres"
	"github.com/wso2/property-sync-service/internal/system/config"
	"github.com/wso2/property-sync-service/internal/system/database/client"
	"github.com/wso2/property-sync-service/internal/system/log"
	"github.com/wso2/property-sync-service/test/setup"
)

var docs *postgres.Store

func TestMain(m *testing.M) {
	ctx := context.Background()

	conf := config.Config{
		Log: config.LogConfig{
			LogLevel: "DEBUG",
		},
	}
	config.OverridePSSRuntime(conf)
	_ = log.Init("DEBUG")

	pg, err := setup.SetupTestPostgres(ctx)
	if err != nil {
		fmt.Println("Failed to start test DB:", err)
		os.Exit(1)
	}

	docs, err = postgres.NewStore(ctx, client.NewDBClient(pg.DB), pg.DSN)
	if err != nil {
		fmt.Println("Failed to open document store:", err)
		pg.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	_ = docs.Close()
	pg.Terminate(ctx)
	os.Exit(code)
}
