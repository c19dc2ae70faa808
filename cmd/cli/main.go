package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/livekit/protocol/logger"

	"github.com/aliasexec/voice-agent-server/cmd/cli/commands"
	"github.com/aliasexec/voice-agent-server/version"
)

func main() {
	app := &cli.App{
		Name:    "alias-token-cli",
		Usage:   "client for the ALIAS token server",
		Version: version.Version,
		Flags:   []cli.Flag{commands.HostFlag},
	}

	app.Commands = append(app.Commands, commands.RoomCommands...)
	app.Commands = append(app.Commands, commands.TokenCommands...)

	logger.InitFromConfig(&logger.Config{Level: "info"}, "alias-token-cli")
	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
