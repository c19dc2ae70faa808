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
	"github.com/prometheus/client_golang/prometheus"
)

const (
	RoomCreated = "created"
	RoomExists  = "exists"
	RoomFailed  = "failed"
)

var promRoomProvisionCounter *prometheus.CounterVec

func initRoomStats(serviceName string) {
	promRoomProvisionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   "room",
		Name:        "provisioned",
		ConstLabels: prometheus.Labels{"service": serviceName},
		Help:        "Remote create room calls, by result.",
	}, []string{"result"})

	prometheus.MustRegister(promRoomProvisionCounter)
}

func RecordRoomProvisioned(result string) {
	if !initialized.Load() {
		return
	}
	promRoomProvisionCounter.WithLabelValues(result).Inc()
}
