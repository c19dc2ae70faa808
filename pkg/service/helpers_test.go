package service_test

import (
	"testing"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	"github.com/aliasexec/voice-agent-server/pkg/config"
	"github.com/aliasexec/voice-agent-server/pkg/service"
	"github.com/aliasexec/voice-agent-server/pkg/service/servicefakes"
)

const (
	testAPIKey    = "APIxyz"
	testAPISecret = "this-is-a-test-secret-of-32-chars"
	testURL       = "wss://media.example.com"
)

type videoClaims struct {
	RoomCreate     bool   `json:"roomCreate"`
	RoomJoin       bool   `json:"roomJoin"`
	Room           string `json:"room"`
	CanPublish     *bool  `json:"canPublish"`
	CanSubscribe   *bool  `json:"canSubscribe"`
	CanPublishData *bool  `json:"canPublishData"`
}

type tokenClaims struct {
	Name  string       `json:"name"`
	Video *videoClaims `json:"video"`
}

func newTestConfig(t *testing.T) *config.Config {
	conf, err := config.NewConfig("", true, nil)
	require.NoError(t, err)
	conf.URL = testURL
	conf.APIKey = testAPIKey
	conf.APISecret = testAPISecret
	return conf
}

func newTestIssuer(t *testing.T, conf *config.Config) (*service.CredentialIssuer, *servicefakes.FakeRoomProvisioner) {
	rooms := &servicefakes.FakeRoomProvisioner{}
	return service.NewCredentialIssuer(conf, rooms), rooms
}

// decodeToken verifies the signature with the secret and returns the claims.
func decodeToken(t *testing.T, token string, secret string) (jwt.Claims, tokenClaims) {
	tok, err := jwt.ParseSigned(token)
	require.NoError(t, err)

	var std jwt.Claims
	var grants tokenClaims
	require.NoError(t, tok.Claims([]byte(secret), &std, &grants))
	return std, grants
}
