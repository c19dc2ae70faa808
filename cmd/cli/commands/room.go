package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/livekit/protocol/logger"
)

var (
	RoomCommands = []*cli.Command{
		{
			Name:   "health",
			Usage:  "check that the token server is up",
			Action: health,
		},
		{
			Name:   "create-room",
			Usage:  "ask the token server to create a room",
			Action: createRoom,
			Flags: []cli.Flag{
				roomFlag,
			},
		},
	}
)

func health(c *cli.Context) error {
	res, err := newClient(c).Health(c.Context)
	if err != nil {
		return err
	}

	PrintJSON(res)
	return nil
}

func createRoom(c *cli.Context) error {
	room := c.String("room")
	res, err := newClient(c).CreateRoom(c.Context, room)
	if err != nil {
		return err
	}

	logger.Debugw("room created", "room", room)
	PrintJSON(res)
	return nil
}
