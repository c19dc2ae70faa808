package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/aliasexec/voice-agent-server/pkg/service"
)

var (
	TokenCommands = []*cli.Command{
		{
			Name:   "get-token",
			Usage:  "request a join token from the token server",
			Action: getToken,
			Flags: []cli.Flag{
				roomFlag,
				&cli.StringFlag{
					Name:     "identity",
					Aliases:  []string{"p"},
					Usage:    "unique identity of the participant",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "name",
					Usage: "display name, defaults to identity",
				},
				&cli.BoolFlag{
					Name:  "no-create",
					Usage: "do not create the room before issuing the token",
				},
				&cli.BoolFlag{
					Name:  "token-only",
					Usage: "print only the token",
				},
			},
		},
	}
)

func getToken(c *cli.Context) error {
	req := &service.TokenRequest{
		Room:     c.String("room"),
		Identity: c.String("identity"),
		Name:     c.String("name"),
	}
	if c.Bool("no-create") {
		autoCreate := false
		req.AutoCreateRoom = &autoCreate
	}

	cred, err := newClient(c).IssueToken(c.Context, req)
	if err != nil {
		return err
	}

	if c.Bool("token-only") {
		fmt.Println(cred.Token)
		return nil
	}
	PrintJSON(cred)
	return nil
}
