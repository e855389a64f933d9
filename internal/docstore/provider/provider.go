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
	"strings"

	"github.com/pkg/errors"

	"github.com/wso2/property-sync-service/internal/docstore"
	"github.com/wso2/property-sync-service/internal/docstore/memory"
	"github.com/wso2/property-sync-service/internal/docstore/mongodb"
	"github.com/wso2/property-sync-service/internal/docstore/postgres"
	"github.com/wso2/property-sync-service/internal/docstore/sqlite"
	"github.com/wso2/property-sync-service/internal/system/config"
	"github.com/wso2/property-sync-service/internal/system/constants"
	dbprovider "github.com/wso2/property-sync-service/internal/system/database/provider"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// DocumentStoreProviderInterface opens the configured document store.
type DocumentStoreProviderInterface interface {
	GetDocumentStore(ctx context.Context) (docstore.Store, error)
}

// DocumentStoreProvider is the default implementation of DocumentStoreProviderInterface.
type DocumentStoreProvider struct {
	config config.DocumentStoreConfig
}

// NewDocumentStoreProvider creates a provider for the given configuration.
func NewDocumentStoreProvider(conf config.DocumentStoreConfig) DocumentStoreProviderInterface {
	return &DocumentStoreProvider{config: conf}
}

// GetDocumentStore opens a new store of the configured type. The caller owns it.
func (p *DocumentStoreProvider) GetDocumentStore(ctx context.Context) (docstore.Store, error) {
	storeType := strings.ToLower(strings.TrimSpace(p.config.Type))
	if storeType == "" {
		storeType = constants.MemoryStore
	}
	log.GetLogger().Info("Opening document store", log.String("type", storeType))

	switch storeType {
	case constants.MemoryStore:
		return memory.NewStore(), nil
	case constants.SQLiteStore:
		return sqlite.NewStore(p.config.SQLite.Path)
	case constants.PostgresStore:
		db := dbprovider.NewDBProvider(p.config.Postgres)
		dbClient, err := db.GetDBClient(ctx)
		if err != nil {
			return nil, err
		}
		store, err := postgres.NewStore(ctx, dbClient, db.GetDBConfig().DSN)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		return store, nil
	case constants.MongoDBStore:
		if p.config.MongoDB.URI == "" || p.config.MongoDB.Database == "" {
			return nil, errors.New("mongodb document store requires uri and database")
		}
		client, err := mongodb.Connect(ctx, p.config.MongoDB.URI)
		if err != nil {
			return nil, err
		}
		return mongodb.NewStore(client, p.config.MongoDB.Database), nil
	default:
		return nil, errors.Errorf("unsupported document store type %q", p.config.Type)
	}
}
