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

package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnce_IsIdempotent(t *testing.T) {
	calls := 0
	u := Once(func() { calls++ })

	u()
	u()
	u()

	assert.Equal(t, 1, calls)
}

func TestOnce_NilFunc(t *testing.T) {
	assert.NotPanics(t, func() { Once(nil)() })
}

func TestRegistry_SetReplacesAndReleasesPrevious(t *testing.T) {
	r := NewRegistry()
	var released []string

	r.Set("apartments", func() { released = append(released, "first") })
	r.Set("apartments", func() { released = append(released, "second") })

	assert.Equal(t, []string{"first"}, released)
	assert.Equal(t, []string{"apartments"}, r.Keys())
}

func TestRegistry_ReleaseAll(t *testing.T) {
	r := NewRegistry()
	var released []string
	r.Set("residences", func() { released = append(released, "residences") })
	r.Set("apartments", func() { released = append(released, "apartments") })

	assert.Equal(t, 2, r.ReleaseAll())
	assert.ElementsMatch(t, []string{"residences", "apartments"}, released)
	assert.Empty(t, r.Keys())

	// A second release is a no-op.
	assert.Equal(t, 0, r.ReleaseAll())
	assert.Len(t, released, 2)
}

func TestRegistry_Release(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Set("tenant", func() { calls++ })

	assert.True(t, r.Has("tenant"))
	assert.True(t, r.Release("tenant"))
	assert.False(t, r.Release("tenant"))
	assert.False(t, r.Has("tenant"))
	assert.Equal(t, 1, calls)
}

func TestRegistry_HandleCalledDirectlyAndReleased(t *testing.T) {
	r := NewRegistry()
	calls := 0
	u := Once(func() { calls++ })
	r.Set("landlord", u)

	u()
	r.ReleaseAll()

	assert.Equal(t, 1, calls)
}

func TestListeners_EmitInOrderAndRemove(t *testing.T) {
	var l Listeners[int]
	var got []string

	removeA := l.Add(func(v int) { got = append(got, "a") })
	l.Add(func(v int) { got = append(got, "b") })
	l.Emit(1)
	removeA()
	removeA()
	l.Emit(2)

	assert.Equal(t, []string{"a", "b", "b"}, got)
	assert.Equal(t, 1, l.Len())

	l.Clear()
	l.Emit(3)
	assert.Equal(t, 0, l.Len())
	assert.Len(t, got, 3)
}
