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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/livekit/protocol/logger"

	"github.com/aliasexec/voice-agent-server/pkg/config"
	"github.com/aliasexec/voice-agent-server/pkg/service"
	"github.com/aliasexec/voice-agent-server/pkg/telemetry/prometheus"
	"github.com/aliasexec/voice-agent-server/version"
)

var baseFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "bind",
		Usage: "IP address to listen on, use flag multiple times to specify multiple addresses",
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "path to token server config file",
	},
	&cli.StringFlag{
		Name:    "config-body",
		Usage:   "token server config in YAML, typically passed in as an environment var in a container",
		EnvVars: []string{"TOKEN_SERVER_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "url",
		Usage:   "LiveKit server URL handed to clients",
		EnvVars: []string{"LIVEKIT_URL"},
	},
	&cli.StringFlag{
		Name:    "api-key",
		Usage:   "LiveKit API key",
		EnvVars: []string{"LIVEKIT_API_KEY"},
	},
	&cli.StringFlag{
		Name:    "api-secret",
		Usage:   "LiveKit API secret",
		EnvVars: []string{"LIVEKIT_API_SECRET"},
	},
	&cli.UintFlag{
		Name:    "port",
		Usage:   "HTTP port to listen on",
		EnvVars: []string{"PORT"},
	},
	&cli.UintFlag{
		Name:    "prometheus-port",
		Usage:   "port to expose /metrics on, disabled when 0",
		EnvVars: []string{"PROMETHEUS_PORT"},
	},
	&cli.StringFlag{
		Name:    "service-name",
		Usage:   "service name reported by /health",
		EnvVars: []string{"SERVICE_NAME"},
	},
	&cli.BoolFlag{
		Name:  "dev",
		Usage: "sets log-level to debug and relaxes secret checks. insecure for production",
	},
	&cli.BoolFlag{
		Name:   "disable-strict-config",
		Usage:  "disables strict config parsing",
		Hidden: true,
	},
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "alias-token-server",
		Usage:       "Issues LiveKit access tokens for the ALIAS voice agent",
		Description: "run without subcommands to start the server",
		Flags:       baseFlags,
		Action:      startServer,
		Commands: []*cli.Command{
			{
				Name:   "generate-keys",
				Usage:  "generates an API key and secret pair",
				Action: generateKeys,
			},
			{
				Name:   "create-token",
				Usage:  "create a room join token for development use",
				Action: createToken,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "room",
						Usage:    "name of room to join",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "identity",
						Usage:    "identity of participant that holds the token",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "display name, defaults to identity",
					},
					&cli.BoolFlag{
						Name:  "create-room",
						Usage: "create the room on the LiveKit server first",
					},
				},
			},
			{
				Name:   "create-room",
				Usage:  "create a room on the LiveKit server",
				Action: createRoom,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "room",
						Usage:    "name of room to create",
						Required: true,
					},
				},
			},
			{
				Name:   "print-config",
				Usage:  "print the effective configuration, secrets redacted",
				Action: printConfig,
			},
		},
		Version: version.Version,
	}
}

func getConfig(c *cli.Context) (*config.Config, error) {
	confString, err := config.ReadConfigFile(c.String("config"), c.String("config-body"))
	if err != nil {
		return nil, err
	}

	conf, err := config.NewConfig(confString, !c.Bool("disable-strict-config"), c)
	if err != nil {
		return nil, err
	}
	config.InitLoggerFromConfig(&conf.Logging)

	if conf.Development {
		logger.Infow("starting in development mode")
	}
	return conf, nil
}

func startServer(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}

	if err := conf.ValidateKeys(); err != nil {
		// /health must keep working, token requests report the misconfiguration
		logger.Warnw("API keys are not configured", err)
	}

	prometheus.Init(conf.ServiceName)

	server, err := service.InitializeServer(conf)
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigChan
		logger.Infow("exit requested, shutting down", "signal", sig)
		server.Stop()
	}()

	return server.Start()
}
