package service_test

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aliasexec/voice-agent-server/pkg/service"
	"github.com/aliasexec/voice-agent-server/pkg/testutils"
)

func freePort(t *testing.T) uint32 {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return uint32(ln.Addr().(*net.TCPAddr).Port)
}

func TestServerLifecycle(t *testing.T) {
	conf := newTestConfig(t)
	conf.Port = freePort(t)
	conf.BindAddresses = []string{"127.0.0.1"}

	server, err := service.InitializeServer(conf)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()
	testutils.WithTimeout(t, func() string {
		if !server.IsRunning() {
			return "server not running"
		}
		return ""
	})

	res, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", conf.Port))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var health service.HealthResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&health))
	require.Equal(t, "ok", health.Status)

	server.Stop()
	require.NoError(t, <-done)
	require.False(t, server.IsRunning())
}

func TestServerRequiresPort(t *testing.T) {
	conf := newTestConfig(t)
	conf.Port = 0
	_, err := service.InitializeServer(conf)
	require.Error(t, err)
}
