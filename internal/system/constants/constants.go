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

package constants

import "time"

const ApiBasePath = "/api/v1"
const UsersApiPath = "users"
const SessionApiPath = "session"
const ResidencesApiPath = "residences"
const ApartmentsApiPath = "apartments"

type contextKey string

const TraceIDContextKey contextKey = "trace_id"
const IdentityContextKey contextKey = "identity"

const TraceIDHeader = "X-Trace-Id"

// Document store collections.
const (
	UsersCollection      = "users"
	TenantsCollection    = "tenants"
	LandlordsCollection  = "landlords"
	ResidencesCollection = "residences"
	ApartmentsCollection = "apartments"
)

// Document fields used in query filters.
const (
	LandlordIDField  = "landlordId"
	ResidenceIDField = "residenceId"
)

// Live channel names. They prefix listener error messages and label metrics.
const (
	TenantChannel     = "Tenant"
	LandlordChannel   = "Landlord"
	ResidencesChannel = "Residences"
	ApartmentsChannel = "Apartments"
)

// Document store types.
const (
	MemoryStore   = "memory"
	SQLiteStore   = "sqlite"
	PostgresStore = "postgres"
	MongoDBStore  = "mongodb"
)

const DefaultQueueSize = 1000
const DefaultStoreTimeout = 5 * time.Second
const DefaultIdentityCacheTTL = 5 * time.Minute
const PostgresNotifyChannel = "document_changes"
