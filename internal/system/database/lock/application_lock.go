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

package lock

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/wso2/property-sync-service/internal/system/database/client"
	"github.com/wso2/property-sync-service/internal/system/log"
)

// PostgresLock serialises work across service instances with session level advisory locks.
type PostgresLock struct {
	dbClient client.DBClientInterface
}

func NewPostgresLock(dbClient client.DBClientInterface) *PostgresLock {
	return &PostgresLock{dbClient: dbClient}
}

// GenerateLockKey hashes a string key into the bigint space used by advisory locks.
func GenerateLockKey(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

// WithLock runs fn while holding the advisory lock for key.
func (l *PostgresLock) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {

	logger := log.GetLogger()
	lockID := GenerateLockKey(key)

	tx, err := l.dbClient.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin advisory lock transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Transaction scoped, so the lock is released on commit or rollback.
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockID); err != nil {
		return fmt.Errorf("acquire advisory lock %q: %w", key, err)
	}
	logger.Debug(fmt.Sprintf("Acquired advisory lock %d for %s", lockID, key))

	if err := fn(ctx); err != nil {
		return err
	}
	return tx.Commit()
}
