package airfryer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/joshp123/condor/internal/logger"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "cml"
)

// Device error taxonomy. All three are transient at the poller level but
// abort a command sequence.
var (
	// ErrUnreachable wraps network-level failures.
	ErrUnreachable = errors.New("airfryer unreachable")
	// ErrBadResponse wraps non-200 responses and undecodable bodies.
	ErrBadResponse = errors.New("airfryer bad response")
	// ErrAuthExhausted is returned when the device challenges again right
	// after re-authentication.
	ErrAuthExhausted = errors.New("airfryer auth exhausted")
)

// Client talks to the appliance's local HTTPS API. The endpoint fields are
// immutable after construction; only the rolling auth token mutates, under
// the mutex.
type Client struct {
	address      string
	clientID     string
	clientSecret string
	commandPath  string
	httpClient   *http.Client
	log          *logger.Logger

	mu    sync.Mutex
	token string
}

// NewClient builds a device client. The address is host or host:port; the
// scheme is always https because the firmware only serves TLS, with a
// self-signed certificate.
func NewClient(address, clientID, clientSecret, commandPath string, log *logger.Logger) *Client {
	return &Client{
		address:      address,
		clientID:     clientID,
		clientSecret: clientSecret,
		commandPath:  commandPath,
		log:          log,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
				DisableKeepAlives: true,
				MaxConnsPerHost:   1,
			},
		},
	}
}

// Token returns the current auth token. Empty until the first successful
// challenge round-trip.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Status fetches the full status object. On an auth challenge it derives a
// fresh token and retries exactly once; a second consecutive challenge is
// ErrAuthExhausted.
func (c *Client) Status(ctx context.Context) (Status, error) {
	resp, body, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.authenticate(resp); err != nil {
			return nil, err
		}
		resp, body, err = c.do(ctx, http.MethodGet, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: challenged again after re-authentication", ErrAuthExhausted)
		}
	}

	return decodeStatus(resp, body)
}

// Send issues a PUT with the given fields as the body and returns the full
// status object the device echoes back. It never re-authenticates: callers
// are expected to hold a token from a prior Status call, and a stale token
// surfaces as ErrBadResponse.
func (c *Client) Send(ctx context.Context, fields map[string]any) (Status, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}

	resp, body, err := c.do(ctx, http.MethodPut, payload)
	if err != nil {
		return nil, err
	}

	return decodeStatus(resp, body)
}

// TestConnection reports whether a single status fetch succeeds.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

// authenticate extracts the challenge from a 401 response and stores the
// derived token.
func (c *Client) authenticate(resp *http.Response) error {
	challenge := strings.TrimPrefix(resp.Header.Get("WWW-Authenticate"), authScheme+" ")
	if challenge == "" {
		return fmt.Errorf("%w: 401 without challenge", ErrBadResponse)
	}

	token, err := deriveToken(challenge, c.clientID, c.clientSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.log.Debug("derived fresh auth token")
	return nil
}

// do performs one request on an isolated connection. Long-lived connections
// to this firmware go stale half-closed, so keep-alives stay off and idle
// connections are dropped after every call.
func (c *Client) do(ctx context.Context, method string, payload []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	url := "https://" + c.address + c.commandPath
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "close")
	req.Close = true

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", authScheme+" "+token)
	}

	resp, err := c.httpClient.Do(req)
	defer c.httpClient.CloseIdleConnections()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}

	return resp, body, nil
}

func decodeStatus(resp *http.Response, body []byte) (Status, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrBadResponse, err)
	}
	return status, nil
}
