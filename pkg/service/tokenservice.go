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
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/twitchtv/twirp"

	"github.com/livekit/protocol/logger"

	"github.com/aliasexec/voice-agent-server/pkg/config"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type CreateRoomResponse struct {
	Room    string `json:"room"`
	Created bool   `json:"created"`
}

type errStruct struct {
	StatusCode int    `json:"statusCode"`
	Detail     string `json:"detail"`
}

// TokenService exposes the credential issuer over JSON/HTTP.
type TokenService struct {
	conf   *config.Config
	issuer *CredentialIssuer
}

func NewTokenService(conf *config.Config, issuer *CredentialIssuer) *TokenService {
	return &TokenService{
		conf:   conf,
		issuer: issuer,
	}
}

func (s *TokenService) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("POST /token", s.issueToken)
	mux.HandleFunc("POST /rooms", s.createRoom)
}

func (s *TokenService) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.conf.ServiceName,
	})
}

func (s *TokenService) issueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, ErrInvalidBody, "decodeError", err)
		return
	}

	cred, err := s.issuer.IssueToken(r.Context(), &req)
	if err != nil {
		handleError(w, r, err, "room", req.Room, "participant", req.Identity)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (s *TokenService) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, ErrInvalidBody, "decodeError", err)
		return
	}

	if err := s.issuer.CreateSession(r.Context(), req.Name); err != nil {
		handleError(w, r, err, "room", req.Name)
		return
	}
	writeJSON(w, http.StatusOK, CreateRoomResponse{
		Room:    req.Name,
		Created: true,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnw("could not write response", err)
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error, keysAndValues ...interface{}) {
	status, detail := errorResponse(err)
	keysAndValues = append(keysAndValues, "status", status, "method", r.Method, "path", r.URL.Path)
	if !errors.Is(err, context.Canceled) && !errors.Is(r.Context().Err(), context.Canceled) {
		logger.GetLogger().WithCallDepth(1).Warnw("error handling request", err, keysAndValues...)
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeJSON(w, status, errStruct{
		StatusCode: status,
		Detail:     detail,
	})
}

// errorResponse maps issuer errors onto an HTTP status and the message
// returned to the caller.
func errorResponse(err error) (int, string) {
	var provisioningErr *SessionProvisioningError
	if errors.As(err, &provisioningErr) {
		return http.StatusInternalServerError, provisioningErr.Error()
	}

	var terr twirp.Error
	if errors.As(err, &terr) {
		switch terr.Code() {
		case twirp.InvalidArgument, twirp.Malformed:
			return http.StatusUnprocessableEntity, terr.Msg()
		default:
			return twirp.ServerHTTPStatusFromErrorCode(terr.Code()), terr.Msg()
		}
	}
	return http.StatusInternalServerError, err.Error()
}
