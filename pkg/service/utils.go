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

package service

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/negroni/v3"
	"go.uber.org/zap"

	"github.com/livekit/protocol/logger"

	"github.com/aliasexec/voice-agent-server/pkg/telemetry/prometheus"
)

const requestIDHeader = "X-Request-ID"

var knownPaths = map[string]bool{
	"/health": true,
	"/token":  true,
	"/rooms":  true,
}

func RemoveDoubleSlashes(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if strings.HasPrefix(r.URL.Path, "//") {
		r.URL.Path = r.URL.Path[1:]
	}
	next(w, r)
}

// RequestLogger tags every request with an id and logs it once served.
func RequestLogger(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)

	next(w, r)

	status := http.StatusOK
	if rw, ok := w.(negroni.ResponseWriter); ok && rw.Status() != 0 {
		status = rw.Status()
	}
	path := r.URL.Path
	if !knownPaths[path] {
		path = "other"
	}
	prometheus.RecordHTTPRequest(path, status)

	logger.Debugw("request served",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration", time.Since(start),
		"requestID", requestID,
		"clientIP", GetClientIP(r),
	)
}

// LogPanic reports a handler panic through the service logger; the client
// still gets a 500 from negroni.
func LogPanic(info *negroni.PanicInformation) {
	logger.Errorw("recovered panic", nil,
		"request", info.RequestDescription(),
		zap.Any("panic", info.RecoveredPanic),
		zap.ByteString("stack", info.Stack),
	)
}

func GetClientIP(r *http.Request) string {
	// CF proxy typically is first thing the user reaches
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	return ip
}
