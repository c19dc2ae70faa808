package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twitchtv/twirp"

	"github.com/livekit/protocol/livekit"

	"github.com/aliasexec/voice-agent-server/pkg/config"
	"github.com/aliasexec/voice-agent-server/pkg/service"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestIssueToken(t *testing.T) {
	t.Run("token matches request", func(t *testing.T) {
		conf := newTestConfig(t)
		issuer, rooms := newTestIssuer(t, conf)
		rooms.CreateRoomReturns(&livekit.Room{Name: "standup", Sid: "RM_standup"}, nil)

		cred, err := issuer.IssueToken(context.Background(), &service.TokenRequest{
			Room:     "standup",
			Identity: "u1",
		})
		require.NoError(t, err)
		require.Equal(t, "standup", cred.Room)
		require.Equal(t, "u1", cred.Identity)
		require.Equal(t, testURL, cred.URL)
		require.NotEmpty(t, cred.Token)

		std, grants := decodeToken(t, cred.Token, testAPISecret)
		require.Equal(t, "u1", std.Subject)
		require.Equal(t, testAPIKey, std.Issuer)
		require.NotNil(t, std.Expiry)
		require.True(t, std.Expiry.Time().After(time.Now()))
		// display name falls back to identity
		require.Equal(t, "u1", grants.Name)

		require.NotNil(t, grants.Video)
		require.Equal(t, "standup", grants.Video.Room)
		require.True(t, grants.Video.RoomJoin)
		require.False(t, grants.Video.RoomCreate)
		require.True(t, *grants.Video.CanPublish)
		require.True(t, *grants.Video.CanSubscribe)
		require.True(t, *grants.Video.CanPublishData)

		require.Equal(t, 1, rooms.CreateRoomCallCount())
		_, req := rooms.CreateRoomArgsForCall(0)
		require.Equal(t, "standup", req.Name)
	})

	t.Run("display name", func(t *testing.T) {
		issuer, _ := newTestIssuer(t, newTestConfig(t))
		cred, err := issuer.IssueToken(context.Background(), &service.TokenRequest{
			Room:     "standup",
			Identity: "u1",
			Name:     "Ada",
		})
		require.NoError(t, err)

		_, grants := decodeToken(t, cred.Token, testAPISecret)
		require.Equal(t, "Ada", grants.Name)
	})

	t.Run("auto create disabled", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))
		_, err := issuer.IssueToken(context.Background(), &service.TokenRequest{
			Room:           "standup",
			Identity:       "u1",
			AutoCreateRoom: boolPtr(false),
		})
		require.NoError(t, err)
		require.Zero(t, rooms.CreateRoomCallCount())
	})

	t.Run("auto create default from config", func(t *testing.T) {
		conf := newTestConfig(t)
		conf.Room.AutoCreate = false
		issuer, rooms := newTestIssuer(t, conf)

		_, err := issuer.IssueToken(context.Background(), &service.TokenRequest{Room: "standup", Identity: "u1"})
		require.NoError(t, err)
		require.Zero(t, rooms.CreateRoomCallCount())

		_, err = issuer.IssueToken(context.Background(), &service.TokenRequest{
			Room:           "standup",
			Identity:       "u1",
			AutoCreateRoom: boolPtr(true),
		})
		require.NoError(t, err)
		require.Equal(t, 1, rooms.CreateRoomCallCount())
	})

	t.Run("grant policy from config", func(t *testing.T) {
		conf := newTestConfig(t)
		conf.Token.Grant.CanPublish = false
		conf.Token.ValidFor = time.Hour
		issuer, _ := newTestIssuer(t, conf)

		cred, err := issuer.IssueToken(context.Background(), &service.TokenRequest{Room: "standup", Identity: "listener"})
		require.NoError(t, err)

		std, grants := decodeToken(t, cred.Token, testAPISecret)
		require.False(t, *grants.Video.CanPublish)
		require.True(t, *grants.Video.CanSubscribe)
		require.WithinDuration(t, time.Now().Add(time.Hour), std.Expiry.Time(), time.Minute)
	})

	t.Run("empty fields", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))

		_, err := issuer.IssueToken(context.Background(), &service.TokenRequest{Room: "standup"})
		require.ErrorIs(t, err, service.ErrIdentityEmpty)

		_, err = issuer.IssueToken(context.Background(), &service.TokenRequest{Identity: "u1"})
		require.ErrorIs(t, err, service.ErrNoRoomName)
		require.Zero(t, rooms.CreateRoomCallCount())
	})
}

func TestMissingConfiguration(t *testing.T) {
	unsetters := map[string]func(c *config.Config){
		"url":    func(c *config.Config) { c.URL = "" },
		"key":    func(c *config.Config) { c.APIKey = "" },
		"secret": func(c *config.Config) { c.APISecret = "" },
	}
	for name, unset := range unsetters {
		t.Run(name, func(t *testing.T) {
			conf := newTestConfig(t)
			unset(conf)
			issuer, rooms := newTestIssuer(t, conf)

			cred, err := issuer.IssueToken(context.Background(), &service.TokenRequest{Room: "standup", Identity: "u1"})
			require.ErrorIs(t, err, service.ErrConfiguration)
			require.Nil(t, cred)

			err = issuer.CreateSession(context.Background(), "standup")
			require.ErrorIs(t, err, service.ErrConfiguration)

			require.Zero(t, rooms.CreateRoomCallCount())
		})
	}
}

func TestEnsureSession(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))
		rooms.CreateRoomReturnsOnCall(0, &livekit.Room{Name: "standup"}, nil)
		rooms.CreateRoomReturnsOnCall(1, nil, twirp.NewError(twirp.AlreadyExists, "room exists"))

		require.NoError(t, issuer.EnsureSession(context.Background(), "standup"))
		require.NoError(t, issuer.EnsureSession(context.Background(), "standup"))
		require.Equal(t, 2, rooms.CreateRoomCallCount())
	})

	t.Run("already exists message", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))
		rooms.CreateRoomReturns(nil, errors.New("Room Already Exists"))

		require.NoError(t, issuer.EnsureSession(context.Background(), "standup"))
	})

	t.Run("unrelated failure", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))
		cause := twirp.NewError(twirp.Unavailable, "media server overloaded")
		rooms.CreateRoomReturns(nil, cause)

		err := issuer.EnsureSession(context.Background(), "standup")
		var provisioningErr *service.SessionProvisioningError
		require.ErrorAs(t, err, &provisioningErr)
		require.Equal(t, "standup", provisioningErr.Room)
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "Failed to create room")
		require.Contains(t, err.Error(), "media server overloaded")

		cred, err := issuer.IssueToken(context.Background(), &service.TokenRequest{Room: "standup", Identity: "u1"})
		require.ErrorAs(t, err, &provisioningErr)
		require.Nil(t, cred)
	})

	t.Run("create session validates name", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))
		require.ErrorIs(t, issuer.CreateSession(context.Background(), ""), service.ErrNoRoomName)
		require.NoError(t, issuer.CreateSession(context.Background(), "standup"))
		require.Equal(t, 1, rooms.CreateRoomCallCount())
	})

	t.Run("remote call is bounded", func(t *testing.T) {
		conf := newTestConfig(t)
		conf.Room.CreateTimeout = 50 * time.Millisecond
		issuer, rooms := newTestIssuer(t, conf)
		rooms.CreateRoomCalls(func(ctx context.Context, _ *livekit.CreateRoomRequest) (*livekit.Room, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		err := issuer.EnsureSession(context.Background(), "standup")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("concurrent callers share one call", func(t *testing.T) {
		issuer, rooms := newTestIssuer(t, newTestConfig(t))
		release := make(chan struct{})
		rooms.CreateRoomCalls(func(context.Context, *livekit.CreateRoomRequest) (*livekit.Room, error) {
			<-release
			return &livekit.Room{Name: "standup"}, nil
		})

		const callers = 8
		var started, done sync.WaitGroup
		errs := make(chan error, callers)
		for i := 0; i < callers; i++ {
			started.Add(1)
			done.Add(1)
			go func() {
				defer done.Done()
				started.Done()
				errs <- issuer.EnsureSession(context.Background(), "standup")
			}()
		}
		started.Wait()
		// give every caller time to join the blocked call
		time.Sleep(50 * time.Millisecond)
		close(release)
		done.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		require.Equal(t, 1, rooms.CreateRoomCallCount())
	})

	t.Run("first caller going away", func(t *testing.T) {
		conf := newTestConfig(t)
		conf.Room.CreateTimeout = 0
		issuer, rooms := newTestIssuer(t, conf)

		var once sync.Once
		entered := make(chan struct{})
		release := make(chan struct{})
		rooms.CreateRoomCalls(func(ctx context.Context, _ *livekit.CreateRoomRequest) (*livekit.Room, error) {
			once.Do(func() { close(entered) })
			select {
			case <-release:
				return &livekit.Room{Name: "standup"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})

		ctx, cancel := context.WithCancel(context.Background())
		first := make(chan error, 1)
		go func() {
			first <- issuer.EnsureSession(ctx, "standup")
		}()
		<-entered

		second := make(chan error, 1)
		go func() {
			second <- issuer.EnsureSession(context.Background(), "standup")
		}()
		time.Sleep(20 * time.Millisecond)

		cancel()
		time.Sleep(20 * time.Millisecond)
		close(release)

		require.NoError(t, <-second)
		require.NoError(t, <-first)
		require.Equal(t, 1, rooms.CreateRoomCallCount())
	})
}

func TestIsRoomExists(t *testing.T) {
	require.False(t, service.IsRoomExists(nil))
	require.True(t, service.IsRoomExists(twirp.NewError(twirp.AlreadyExists, "duplicate")))
	require.True(t, service.IsRoomExists(errors.New("room already exists")))
	require.True(t, service.IsRoomExists(errors.New("Room EXISTS")))
	require.False(t, service.IsRoomExists(twirp.NewError(twirp.Unauthenticated, "invalid token")))
	require.False(t, service.IsRoomExists(errors.New("connection refused")))
}
