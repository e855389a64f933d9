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

package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wso2/property-sync-service/internal/docstore"
)

func TestBuildFilter(t *testing.T) {
	filter, err := buildFilter(docstore.NewQuery("apartments",
		docstore.Eq("landlordId", "l1"),
		docstore.In("residenceId", []string{"r1", "r2"})))
	require.NoError(t, err)

	assert.Equal(t, bson.D{
		{Key: "landlordId", Value: "l1"},
		{Key: "residenceId", Value: bson.M{"$in": []interface{}{"r1", "r2"}}},
	}, filter)
}

func TestBuildFilter_EmptyIn(t *testing.T) {
	filter, err := buildFilter(docstore.NewQuery("apartments", docstore.In("residenceId", nil)))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$in": []interface{}{}}, filter[0].Value)
}

func TestBuildFilter_UnsupportedOperator(t *testing.T) {
	_, err := buildFilter(docstore.NewQuery("apartments", docstore.Filter{Field: "x", Op: "<"}))
	assert.Error(t, err)
}

func TestBSONConversion(t *testing.T) {
	doc, err := toBSON([]byte(`{"residenceName":"Lindenhof","apartments":["a1","a2"],"zip":8001}`))
	require.NoError(t, err)
	doc[idField] = "r1"

	id, data, err := fromBSON(doc)
	require.NoError(t, err)
	assert.Equal(t, "r1", id)
	assert.JSONEq(t, `{"residenceName":"Lindenhof","apartments":["a1","a2"],"zip":8001}`, string(data))
}

func TestToBSON_RejectsInvalidJSON(t *testing.T) {
	_, err := toBSON([]byte(`not json`))
	assert.Error(t, err)
}
