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

package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/negroni/v3"
	"go.uber.org/atomic"

	"github.com/livekit/protocol/logger"

	"github.com/aliasexec/voice-agent-server/pkg/config"
	"github.com/aliasexec/voice-agent-server/version"
)

const shutdownTimeout = 5 * time.Second

type TokenServer struct {
	config     *config.Config
	httpServer *http.Server
	promServer *http.Server
	running    atomic.Bool
	doneChan   chan struct{}
	closedChan chan struct{}
}

func NewTokenServer(conf *config.Config, tokenService *TokenService) (*TokenServer, error) {
	if conf.Port == 0 {
		return nil, errors.New("port must be set")
	}

	s := &TokenServer{
		config:     conf,
		doneChan:   make(chan struct{}),
		closedChan: make(chan struct{}),
	}

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	recovery.LogStack = false
	recovery.PanicHandlerFunc = LogPanic

	middlewares := []negroni.Handler{
		// always the first
		recovery,
		negroni.HandlerFunc(RemoveDoubleSlashes),
		negroni.HandlerFunc(RequestLogger),
		cors.New(corsOptions(conf.CORS)),
	}

	mux := http.NewServeMux()
	tokenService.SetupRoutes(mux)

	s.httpServer = &http.Server{
		Handler:           configureMiddlewares(mux, middlewares...),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      conf.Room.CreateTimeout + 10*time.Second,
	}

	if conf.PrometheusPort > 0 {
		s.promServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.PrometheusPort),
			Handler: promhttp.Handler(),
		}
	}

	return s, nil
}

// Handler returns the full middleware chain serving the API.
func (s *TokenServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *TokenServer) IsRunning() bool {
	return s.running.Load()
}

func (s *TokenServer) Start() error {
	if s.running.Load() {
		return errors.New("already running")
	}

	addresses := s.config.BindAddresses
	if addresses == nil {
		addresses = []string{""}
	}

	// ensure we could listen
	listeners := make([]net.Listener, 0, len(addresses))
	for _, addr := range addresses {
		ln, err := net.Listen("tcp", net.JoinHostPort(addr, strconv.Itoa(int(s.config.Port))))
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return err
		}
		listeners = append(listeners, ln)
	}

	if missing := s.config.MissingCredentials(); len(missing) > 0 {
		logger.Warnw("LiveKit credentials incomplete, token requests will fail", nil, "missing", missing)
	}

	logger.Infow("starting token server",
		"version", version.Version,
		"portHttp", s.config.Port,
		"bindAddresses", addresses,
		"livekitURL", s.config.URL,
		"service", s.config.ServiceName,
	)

	for _, ln := range listeners {
		go func(l net.Listener) {
			if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorw("could not serve http", err, "address", l.Addr().String())
			}
		}(ln)
	}

	if s.promServer != nil {
		promListener, err := net.Listen("tcp", s.promServer.Addr)
		if err != nil {
			_ = s.httpServer.Close()
			return err
		}
		go func() {
			if err := s.promServer.Serve(promListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorw("could not serve prometheus", err)
			}
		}()
	}

	s.running.Store(true)

	<-s.doneChan

	// wait for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.httpServer.Shutdown(ctx)

	if s.promServer != nil {
		_ = s.promServer.Shutdown(ctx)
	}

	close(s.closedChan)
	return nil
}

func (s *TokenServer) Stop() {
	if !s.running.Swap(false) {
		return
	}

	close(s.doneChan)
	<-s.closedChan
}

// corsOptions echoes the request origin when every origin is allowed, browsers
// reject a wildcard answer to credentialed requests.
func corsOptions(conf config.CORSConfig) cors.Options {
	opts := cors.Options{
		AllowedOrigins: conf.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: conf.AllowCredentials,
	}
	if slices.Contains(conf.AllowedOrigins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	return opts
}

func configureMiddlewares(handler http.Handler, middlewares ...negroni.Handler) *negroni.Negroni {
	n := negroni.New()
	for _, m := range middlewares {
		n.Use(m)
	}
	n.UseHandler(handler)
	return n
}
