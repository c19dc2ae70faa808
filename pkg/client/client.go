package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aliasexec/voice-agent-server/pkg/service"
)

const defaultTimeout = 30 * time.Second

// StatusError is a non-2xx answer from the token server.
type StatusError struct {
	StatusCode int    `json:"statusCode"`
	Detail     string `json:"detail"`
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("token server returned %d: %s", e.StatusCode, e.Detail)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks to the token server's JSON endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) (*service.HealthResponse, error) {
	res := &service.HealthResponse{}
	if err := c.do(ctx, http.MethodGet, "/health", nil, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) IssueToken(ctx context.Context, req *service.TokenRequest) (*service.Credential, error) {
	res := &service.Credential{}
	if err := c.do(ctx, http.MethodPost, "/token", req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) CreateRoom(ctx context.Context, name string) (*service.CreateRoomResponse, error) {
	res := &service.CreateRoomResponse{}
	if err := c.do(ctx, http.MethodPost, "/rooms", &service.CreateRoomRequest{Name: name}, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{}
		if err := json.NewDecoder(res.Body).Decode(statusErr); err != nil || statusErr.Detail == "" {
			statusErr.Detail = http.StatusText(res.StatusCode)
		}
		statusErr.StatusCode = res.StatusCode
		return statusErr
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
