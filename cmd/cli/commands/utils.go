package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/aliasexec/voice-agent-server/pkg/client"
)

var (
	HostFlag = &cli.StringFlag{
		Name:    "host",
		Usage:   "base URL of the token server",
		Value:   "http://localhost:8008",
		EnvVars: []string{"TOKEN_SERVER_URL"},
	}
	roomFlag = &cli.StringFlag{
		Name:     "room",
		Aliases:  []string{"r"},
		Usage:    "name of the room",
		Required: true,
	}
)

func newClient(c *cli.Context) *client.Client {
	return client.New(c.String("host"))
}
