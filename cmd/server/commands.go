package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/livekit/protocol/utils"
	"github.com/livekit/protocol/utils/guid"

	"github.com/aliasexec/voice-agent-server/pkg/config"
	"github.com/aliasexec/voice-agent-server/pkg/service"
)

func generateKeys(c *cli.Context) error {
	apiKey := guid.New(utils.APIKeyPrefix)
	secret := utils.RandomSecret()
	fmt.Fprintln(c.App.Writer, "API Key: ", apiKey)
	fmt.Fprintln(c.App.Writer, "API Secret: ", secret)
	return nil
}

func createToken(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}

	autoCreate := c.Bool("create-room")
	cred, err := service.InitializeIssuer(conf).IssueToken(context.Background(), &service.TokenRequest{
		Room:           c.String("room"),
		Identity:       c.String("identity"),
		Name:           c.String("name"),
		AutoCreateRoom: &autoCreate,
	})
	if err != nil {
		return errors.Wrap(err, "issue token")
	}

	expires := "unknown"
	if exp, err := tokenExpiry(cred.Token); err == nil {
		expires = fmt.Sprintf("%s (%s)", exp.Format(time.RFC3339), humanize.Time(exp))
	}

	table := tablewriter.NewWriter(c.App.Writer)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"URL", cred.URL},
		{"Room", cred.Room},
		{"Identity", cred.Identity},
		{"Expires", expires},
	})
	table.Render()

	fmt.Fprintln(c.App.Writer, "Access token:", cred.Token)
	return nil
}

func createRoom(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}

	room := c.String("room")
	if err := service.InitializeIssuer(conf).CreateSession(context.Background(), room); err != nil {
		return errors.Wrapf(err, "create room %s", room)
	}
	fmt.Fprintln(c.App.Writer, "Room ready:", room)
	return nil
}

func printConfig(c *cli.Context) error {
	conf, err := getConfig(c)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.App.Writer)
	table.SetRowLine(true)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Key", "Value"})
	table.AppendBulk(configRows(conf))
	table.Render()

	if missing := conf.MissingCredentials(); len(missing) > 0 {
		fmt.Fprintln(c.App.Writer, "missing:", strings.Join(missing, ", "))
	}
	return nil
}

func configRows(conf *config.Config) [][]string {
	validFor := "library default"
	if conf.Token.ValidFor > 0 {
		validFor = conf.Token.ValidFor.String()
	}
	grant := conf.Token.Grant
	return [][]string{
		{"service_name", conf.ServiceName},
		{"port", strconv.FormatUint(uint64(conf.Port), 10)},
		{"prometheus_port", strconv.FormatUint(uint64(conf.PrometheusPort), 10)},
		{"url", conf.URL},
		{"api_key", conf.APIKey},
		{"api_secret", redact(conf.APISecret)},
		{"development", strconv.FormatBool(conf.Development)},
		{"token.valid_for", validFor},
		{"token.grant", fmt.Sprintf("join=%t publish=%t subscribe=%t publish_data=%t",
			grant.RoomJoin, grant.CanPublish, grant.CanSubscribe, grant.CanPublishData)},
		{"room.auto_create", strconv.FormatBool(conf.Room.AutoCreate)},
		{"room.create_timeout", conf.Room.CreateTimeout.String()},
		{"room.empty_timeout", humanize.Comma(int64(conf.Room.EmptyTimeout)) + "s"},
		{"room.max_participants", humanize.Comma(int64(conf.Room.MaxParticipants))},
		{"cors.allowed_origins", strings.Join(conf.CORS.AllowedOrigins, ", ")},
	}
}

func redact(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 4:
		return "****"
	default:
		return secret[:2] + strings.Repeat("*", len(secret)-4) + secret[len(secret)-2:]
	}
}

// tokenExpiry reads exp from a token this process just signed.
func tokenExpiry(token string) (time.Time, error) {
	tok, err := jwt.ParseSigned(token)
	if err != nil {
		return time.Time{}, err
	}
	claims := jwt.Claims{}
	if err := tok.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return time.Time{}, err
	}
	if claims.Expiry == nil {
		return time.Time{}, errors.New("token has no expiry")
	}
	return claims.Expiry.Time(), nil
}
