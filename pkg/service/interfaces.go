package service

import (
	"context"

	"github.com/livekit/protocol/livekit"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// creates rooms on the media server, livekit.RoomService satisfies it
//
//counterfeiter:generate . RoomProvisioner
type RoomProvisioner interface {
	CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error)
}
