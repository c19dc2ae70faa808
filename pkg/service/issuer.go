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
	"errors"
	"strings"

	"github.com/twitchtv/twirp"
	"golang.org/x/sync/singleflight"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/logger"

	"github.com/aliasexec/voice-agent-server/pkg/config"
	"github.com/aliasexec/voice-agent-server/pkg/telemetry/prometheus"
)

type TokenRequest struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	// nil uses room.auto_create from config
	AutoCreateRoom *bool `json:"auto_create_room,omitempty"`
}

type Credential struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	Identity string `json:"identity"`
	Room     string `json:"room"`
}

// CredentialIssuer signs participant tokens scoped to a single room and
// makes sure the room exists on the media server. It keeps no state between
// calls and is safe for concurrent use.
type CredentialIssuer struct {
	conf  *config.Config
	rooms RoomProvisioner

	// concurrent creates of the same room share one remote call
	inflight singleflight.Group
}

func NewCredentialIssuer(conf *config.Config, rooms RoomProvisioner) *CredentialIssuer {
	return &CredentialIssuer{
		conf:  conf,
		rooms: rooms,
	}
}

func (i *CredentialIssuer) IssueToken(ctx context.Context, req *TokenRequest) (*Credential, error) {
	if err := i.checkConfig(); err != nil {
		prometheus.RecordTokenIssued(prometheus.StatusError)
		return nil, err
	}
	if req.Identity == "" {
		return nil, ErrIdentityEmpty
	}
	if req.Room == "" {
		return nil, ErrNoRoomName
	}

	autoCreate := i.conf.Room.AutoCreate
	if req.AutoCreateRoom != nil {
		autoCreate = *req.AutoCreateRoom
	}
	if autoCreate {
		if err := i.EnsureSession(ctx, req.Room); err != nil {
			prometheus.RecordTokenIssued(prometheus.StatusError)
			return nil, err
		}
	}

	name := req.Name
	if name == "" {
		name = req.Identity
	}

	at := auth.NewAccessToken(i.conf.APIKey, i.conf.APISecret).
		AddGrant(i.grantFor(req.Room)).
		SetIdentity(req.Identity).
		SetName(name)
	if i.conf.Token.ValidFor > 0 {
		at.SetValidFor(i.conf.Token.ValidFor)
	}
	token, err := at.ToJWT()
	if err != nil {
		prometheus.RecordTokenIssued(prometheus.StatusError)
		return nil, twirp.WrapError(twirp.InternalError("could not sign token"), err)
	}

	logger.Debugw("issued token", "room", req.Room, "participant", req.Identity, "autoCreate", autoCreate)
	prometheus.RecordTokenIssued(prometheus.StatusSuccess)

	return &Credential{
		Token:    token,
		URL:      i.conf.URL,
		Identity: req.Identity,
		Room:     req.Room,
	}, nil
}

// CreateSession provisions a room without issuing a token.
func (i *CredentialIssuer) CreateSession(ctx context.Context, name string) error {
	if err := i.checkConfig(); err != nil {
		return err
	}
	if name == "" {
		return ErrNoRoomName
	}
	return i.EnsureSession(ctx, name)
}

// EnsureSession creates the room unless it already exists. Any other failure
// is returned as a *SessionProvisioningError and is not retried.
func (i *CredentialIssuer) EnsureSession(ctx context.Context, name string) error {
	_, err, shared := i.inflight.Do(name, func() (interface{}, error) {
		return nil, i.createRoom(ctx, name)
	})
	if shared {
		logger.Debugw("joined in-flight room creation", "room", name)
	}
	return err
}

func (i *CredentialIssuer) createRoom(ctx context.Context, name string) error {
	// callers sharing this call outlive the first caller going away
	ctx = context.WithoutCancel(ctx)
	if timeout := i.conf.Room.CreateTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	room, err := i.rooms.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            name,
		EmptyTimeout:    i.conf.Room.EmptyTimeout,
		MaxParticipants: i.conf.Room.MaxParticipants,
	})
	switch {
	case err == nil:
		logger.Infow("room ensured", "room", name, "roomID", room.GetSid())
		prometheus.RecordRoomProvisioned(prometheus.RoomCreated)
		return nil
	case IsRoomExists(err):
		logger.Debugw("room already exists", "room", name)
		prometheus.RecordRoomProvisioned(prometheus.RoomExists)
		return nil
	default:
		logger.Warnw("could not create room", err, "room", name)
		prometheus.RecordRoomProvisioned(prometheus.RoomFailed)
		return &SessionProvisioningError{Room: name, Err: err}
	}
}

func (i *CredentialIssuer) grantFor(room string) *auth.VideoGrant {
	policy := i.conf.Token.Grant
	grant := &auth.VideoGrant{
		RoomJoin: policy.RoomJoin,
		Room:     room,
	}
	grant.SetCanPublish(policy.CanPublish)
	grant.SetCanSubscribe(policy.CanSubscribe)
	grant.SetCanPublishData(policy.CanPublishData)
	return grant
}

func (i *CredentialIssuer) checkConfig() error {
	if missing := i.conf.MissingCredentials(); len(missing) > 0 {
		logger.Errorw("token server is not configured", nil, "missing", missing)
		return ErrConfiguration
	}
	return nil
}

// IsRoomExists reports whether a CreateRoom failure means the room is
// already there. The twirp error code is authoritative; servers that only
// say so in the message are matched on text, which also covers
// "already exists".
func IsRoomExists(err error) bool {
	if err == nil {
		return false
	}
	var terr twirp.Error
	if errors.As(err, &terr) && terr.Code() == twirp.AlreadyExists {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "exists")
}
