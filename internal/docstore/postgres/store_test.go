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

package postgres

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/property-sync-service/internal/docstore"
)

func TestBuildWhere_Equal(t *testing.T) {
	where, args, ok, err := buildWhere(docstore.NewQuery("residences", docstore.Eq("landlordId", "l1")))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "collection = $1 AND data #> $2::text[] = $3::jsonb", where)
	require.Len(t, args, 3)
	assert.Equal(t, "residences", args[0])
	assert.Equal(t, pq.Array([]string{"landlordId"}), args[1])
	assert.Equal(t, `"l1"`, args[2])
}

func TestBuildWhere_In(t *testing.T) {
	where, args, ok, err := buildWhere(docstore.NewQuery("apartments",
		docstore.In("residenceId", []string{"r1", "r2"})))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "collection = $1 AND data #> $2::text[] = ANY($3::jsonb[])", where)
	require.Len(t, args, 3)
	assert.Equal(t, pq.Array([]string{`"r1"`, `"r2"`}), args[2])
}

func TestBuildWhere_NestedFieldAndNumber(t *testing.T) {
	where, args, ok, err := buildWhere(docstore.NewQuery("residences",
		docstore.Eq("address.zip", 8001)))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Contains(t, where, "data #> $2::text[] = $3::jsonb")
	assert.Equal(t, pq.Array([]string{"address", "zip"}), args[1])
	assert.Equal(t, "8001", args[2])
}

func TestBuildWhere_EmptyInMatchesNothing(t *testing.T) {
	_, _, ok, err := buildWhere(docstore.NewQuery("apartments", docstore.In("residenceId", nil)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildWhere_UnsupportedOperator(t *testing.T) {
	query := docstore.NewQuery("apartments", docstore.Filter{Field: "x", Op: "<"})
	_, _, _, err := buildWhere(query)
	assert.Error(t, err)
}

func TestRawData(t *testing.T) {
	data, err := rawData([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	data, err = rawData(`{"b":2}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(data))

	_, err = rawData(42)
	assert.Error(t, err)
}
