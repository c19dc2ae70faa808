// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

const (
	namespace string = "token_server"

	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// set by the first Init, initialized only once the metrics are registered
	registering atomic.Bool
	initialized atomic.Bool

	promTokenCounter   *prometheus.CounterVec
	promRequestCounter *prometheus.CounterVec
)

// Init registers the service metrics. Recording before Init is a no-op.
func Init(serviceName string) {
	if !registering.CompareAndSwap(false, true) {
		return
	}

	promTokenCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "token",
			Name:        "issued",
			ConstLabels: prometheus.Labels{"service": serviceName},
			Help:        "Participant tokens requested, by outcome.",
		},
		[]string{"status"},
	)

	promRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests",
			ConstLabels: prometheus.Labels{"service": serviceName},
		},
		[]string{"path", "status"},
	)

	prometheus.MustRegister(promTokenCounter)
	prometheus.MustRegister(promRequestCounter)

	initRoomStats(serviceName)

	initialized.Store(true)
}

func RecordTokenIssued(status string) {
	if !initialized.Load() {
		return
	}
	promTokenCounter.WithLabelValues(status).Inc()
}

// RecordHTTPRequest counts a served request, path should come from a fixed set.
func RecordHTTPRequest(path string, status int) {
	if !initialized.Load() {
		return
	}
	promRequestCounter.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
