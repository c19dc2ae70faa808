package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livekit/protocol/auth"

	"github.com/aliasexec/voice-agent-server/pkg/config"
)

func TestRedact(t *testing.T) {
	require.Equal(t, "", redact(""))
	require.Equal(t, "****", redact("abcd"))
	require.Equal(t, "se**et", redact("secret"))
}

func TestConfigRows(t *testing.T) {
	conf, err := config.NewConfig("api_secret: supersecretvalue", true, nil)
	require.NoError(t, err)

	rows := map[string]string{}
	for _, row := range configRows(conf) {
		require.Len(t, row, 2)
		rows[row[0]] = row[1]
	}
	require.Equal(t, "8008", rows["port"])
	require.Equal(t, "ws://localhost:7880", rows["url"])
	require.NotContains(t, rows["api_secret"], "supersecretvalue")
	require.Equal(t, "library default", rows["token.valid_for"])
	require.Equal(t, "join=true publish=true subscribe=true publish_data=true", rows["token.grant"])
	require.Equal(t, "10s", rows["room.create_timeout"])
}

func TestTokenExpiry(t *testing.T) {
	token, err := auth.NewAccessToken("devkey", "secret").
		AddGrant(&auth.VideoGrant{RoomJoin: true, Room: "r"}).
		SetIdentity("u").
		SetValidFor(time.Hour).
		ToJWT()
	require.NoError(t, err)

	exp, err := tokenExpiry(token)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	_, err = tokenExpiry("not-a-token")
	require.Error(t, err)
}
