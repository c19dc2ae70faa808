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
	"fmt"

	"github.com/twitchtv/twirp"
)

var (
	ErrConfiguration = twirp.NewError(twirp.Internal, "LIVEKIT_URL, LIVEKIT_API_KEY, and LIVEKIT_API_SECRET must be set")
	ErrIdentityEmpty = twirp.NewError(twirp.InvalidArgument, "identity cannot be empty")
	ErrNoRoomName    = twirp.NewError(twirp.InvalidArgument, "no room name")
	ErrInvalidBody   = twirp.NewError(twirp.Malformed, "request body is not valid JSON")
)

// SessionProvisioningError is returned when the media server refuses to
// create a room for any reason other than the room already existing.
type SessionProvisioningError struct {
	Room string
	Err  error
}

func (e *SessionProvisioningError) Error() string {
	return fmt.Sprintf("Failed to create room: %v", e.Err)
}

func (e *SessionProvisioningError) Unwrap() error {
	return e.Err
}
