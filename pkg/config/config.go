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

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/livekit/protocol/logger"
)

const (
	DefaultServiceName = "alias-voice-agent"

	// minimum secret length outside of development mode
	minSecretLength = 32
)

var (
	ErrKeysNotSet        = errors.New("api_key and api_secret must be provided")
	ErrConfigFileMissing = errors.New("config file does not exist")
)

type Config struct {
	Port           uint32   `yaml:"port,omitempty"`
	BindAddresses  []string `yaml:"bind_addresses,omitempty"`
	PrometheusPort uint32   `yaml:"prometheus_port,omitempty"`
	ServiceName    string   `yaml:"service_name,omitempty"`

	// LiveKit server the issued tokens are valid for
	URL       string `yaml:"url,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`
	APISecret string `yaml:"api_secret,omitempty"`

	Token   TokenConfig   `yaml:"token,omitempty"`
	Room    RoomConfig    `yaml:"room,omitempty"`
	CORS    CORSConfig    `yaml:"cors,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`

	Development bool `yaml:"development,omitempty"`
}

type TokenConfig struct {
	// zero keeps the signing library's default expiry
	ValidFor time.Duration `yaml:"valid_for,omitempty"`
	Grant    GrantConfig   `yaml:"grant,omitempty"`
}

// GrantConfig is the set of capabilities placed into every participant token.
type GrantConfig struct {
	RoomJoin       bool `yaml:"room_join,omitempty"`
	CanPublish     bool `yaml:"can_publish,omitempty"`
	CanSubscribe   bool `yaml:"can_subscribe,omitempty"`
	CanPublishData bool `yaml:"can_publish_data,omitempty"`
}

type RoomConfig struct {
	// default for requests that do not specify auto_create_room
	AutoCreate bool `yaml:"auto_create,omitempty"`
	// bound on a single remote create room call
	CreateTimeout   time.Duration `yaml:"create_timeout,omitempty"`
	EmptyTimeout    uint32        `yaml:"empty_timeout,omitempty"`
	MaxParticipants uint32        `yaml:"max_participants,omitempty"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins,omitempty"`
	AllowCredentials bool     `yaml:"allow_credentials,omitempty"`
}

type LoggingConfig struct {
	logger.Config `yaml:",inline"`
}

var DefaultConfig = Config{
	Port:        8008,
	ServiceName: DefaultServiceName,
	URL:         "ws://localhost:7880",
	APIKey:      "devkey",
	APISecret:   "secret",
	Token: TokenConfig{
		Grant: GrantConfig{
			RoomJoin:       true,
			CanPublish:     true,
			CanSubscribe:   true,
			CanPublishData: true,
		},
	},
	Room: RoomConfig{
		AutoCreate:    true,
		CreateTimeout: 10 * time.Second,
	},
	CORS: CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
	},
}

func NewConfig(confString string, strictMode bool, c *cli.Context) (*Config, error) {
	// start with defaults
	marshalled, err := yaml.Marshal(&DefaultConfig)
	if err != nil {
		return nil, err
	}

	var conf Config
	err = yaml.Unmarshal(marshalled, &conf)
	if err != nil {
		return nil, err
	}

	if confString != "" {
		decoder := yaml.NewDecoder(strings.NewReader(confString))
		decoder.KnownFields(strictMode)
		if err := decoder.Decode(&conf); err != nil {
			return nil, fmt.Errorf("could not parse config: %v", err)
		}
	}

	if c != nil {
		conf.updateFromCLI(c)
	}

	if conf.Logging.Level == "" && conf.Development {
		conf.Logging.Level = "debug"
	}

	return &conf, nil
}

// ReadConfigFile returns the config body, preferring an inline body over a file path.
func ReadConfigFile(configFile string, inConfigBody string) (string, error) {
	if inConfigBody != "" || configFile == "" {
		return inConfigBody, nil
	}

	// expand env vars and ~ in the path
	path, err := homedir.Expand(os.ExpandEnv(configFile))
	if err != nil {
		return "", err
	}

	outConfigBody, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(ErrConfigFileMissing, path)
		}
		return "", err
	}

	return string(outConfigBody), nil
}

// MissingCredentials lists the LiveKit settings that are not configured.
func (conf *Config) MissingCredentials() []string {
	var missing []string
	if conf.URL == "" {
		missing = append(missing, "url")
	}
	if conf.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if conf.APISecret == "" {
		missing = append(missing, "api_secret")
	}
	return missing
}

func (conf *Config) ValidateKeys() error {
	if conf.APIKey == "" || conf.APISecret == "" {
		return ErrKeysNotSet
	}

	if !conf.Development && len(conf.APISecret) < minSecretLength {
		logger.Warnw("secret is too short, should be at least 32 characters for security", nil, "apiKey", conf.APIKey)
	}
	return nil
}

func (conf *Config) updateFromCLI(c *cli.Context) {
	if c.IsSet("dev") {
		conf.Development = c.Bool("dev")
	}
	if c.IsSet("url") {
		conf.URL = c.String("url")
	}
	if c.IsSet("api-key") {
		conf.APIKey = c.String("api-key")
	}
	if c.IsSet("api-secret") {
		conf.APISecret = c.String("api-secret")
	}
	if c.IsSet("port") {
		conf.Port = uint32(c.Uint("port"))
	}
	if c.IsSet("prometheus-port") {
		conf.PrometheusPort = uint32(c.Uint("prometheus-port"))
	}
	if c.IsSet("service-name") {
		conf.ServiceName = c.String("service-name")
	}
	if c.IsSet("bind") {
		conf.BindAddresses = c.StringSlice("bind")
	}
}

func InitLoggerFromConfig(config *LoggingConfig) {
	logger.InitFromConfig(&config.Config, DefaultServiceName)
}
