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

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "property_sync"

// Resolution outcomes.
const (
	OutcomeTenant   = "tenant"
	OutcomeLandlord = "landlord"
	OutcomeNone     = "none"
	OutcomeError    = "error"
)

var registry = prometheus.NewRegistry()

var (
	activeSubscriptions = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_subscriptions",
		Help:      "Open live channels per channel name.",
	}, []string{"channel"})

	listenerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listener_errors_total",
		Help:      "Errors reported by live channels.",
	}, []string{"channel"})

	profileResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_resolutions_total",
		Help:      "Completed profile resolutions by outcome.",
	}, []string{"outcome"})

	mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Property mutations by operation and result.",
	}, []string{"operation", "result"})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Signed-in sessions held by the session manager.",
	})
)

func init() {
	registry.MustRegister(
		activeSubscriptions,
		listenerErrors,
		profileResolutions,
		mutations,
		activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func SubscriptionOpened(channel string) {
	activeSubscriptions.WithLabelValues(channel).Inc()
}

func SubscriptionReleased(channel string) {
	activeSubscriptions.WithLabelValues(channel).Dec()
}

func ListenerError(channel string) {
	listenerErrors.WithLabelValues(channel).Inc()
}

func ProfileResolved(outcome string) {
	profileResolutions.WithLabelValues(outcome).Inc()
}

// MutationDone counts a finished mutation; err decides the result label.
func MutationDone(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	mutations.WithLabelValues(operation, result).Inc()
}

func SessionOpened() {
	activeSessions.Inc()
}

func SessionClosed() {
	activeSessions.Dec()
}
