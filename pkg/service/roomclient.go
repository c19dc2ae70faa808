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
	"net/http"
	"strings"
	"time"

	"github.com/twitchtv/twirp"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"

	"github.com/aliasexec/voice-agent-server/pkg/config"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	// lifetime of the token used to call the RoomService API
	serviceTokenValidFor = 10 * time.Minute
)

// RoomServiceClient calls LiveKit's RoomService over twirp, authenticating
// every call with a freshly signed roomCreate token.
type RoomServiceClient struct {
	conf   *config.Config
	client livekit.RoomService
}

func NewRoomServiceClient(conf *config.Config, httpClient *http.Client) *RoomServiceClient {
	return &RoomServiceClient{
		conf:   conf,
		client: livekit.NewRoomServiceJSONClient(ToHTTPURL(conf.URL), httpClient),
	}
}

func (c *RoomServiceClient) CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error) {
	ctx, err := c.withAccessToken(ctx, &auth.VideoGrant{RoomCreate: true})
	if err != nil {
		return nil, err
	}
	return c.client.CreateRoom(ctx, req)
}

func (c *RoomServiceClient) withAccessToken(ctx context.Context, grant *auth.VideoGrant) (context.Context, error) {
	token, err := auth.NewAccessToken(c.conf.APIKey, c.conf.APISecret).
		AddGrant(grant).
		SetValidFor(serviceTokenValidFor).
		ToJWT()
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	header.Set(authorizationHeader, bearerPrefix+token)
	return twirp.WithHTTPRequestHeaders(ctx, header)
}

// ToHTTPURL converts the websocket URL handed to clients into the base URL
// of the server API.
func ToHTTPURL(url string) string {
	switch {
	case strings.HasPrefix(url, "ws://"):
		return "http://" + strings.TrimPrefix(url, "ws://")
	case strings.HasPrefix(url, "wss://"):
		return "https://" + strings.TrimPrefix(url, "wss://")
	default:
		return url
	}
}

func createHTTPClient(conf *config.Config) *http.Client {
	return &http.Client{
		Timeout: conf.Room.CreateTimeout,
	}
}
