package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"

	"github.com/opensandbox/hdfsh/internal/logging"
	"github.com/opensandbox/hdfsh/internal/metrics"
	"github.com/opensandbox/hdfsh/pkg/types"
)

const webhdfsPrefix = "/webhdfs/v1"

// Client is a WebHDFS client for one user against one or more namenodes.
type Client struct {
	baseURLs  []string
	user      string
	requestID string

	httpClient *retryablehttp.Client
	logger     *zap.Logger
	metrics    *metrics.Recorder

	mu     sync.Mutex
	active int // index into baseURLs of the last namenode that answered
}

// Options configures a Client.
type Options struct {
	// Namenodes are "host:port" HTTP addresses or full base URLs, tried in
	// order.
	Namenodes []string
	User      string

	// Proxy is an optional SOCKS5 "host:port".
	Proxy string

	Timeout time.Duration
	Retries int

	// RequestID is sent as X-Request-Id on every call.
	RequestID string

	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// NewClient creates a WebHDFS client.
func NewClient(opts Options) (*Client, error) {
	if len(opts.Namenodes) == 0 {
		return nil, errors.New("at least one namenode is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	transport := &http.Transport{
		Proxy:               nil,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}
	if opts.Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.Proxy, nil, &net.Dialer{Timeout: opts.Timeout})
		if err != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, errors.New("SOCKS5 dialer does not support contexts")
		}
		transport.DialContext = cd.DialContext
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = leveledLogger{logger.Sugar()}
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	baseURLs := make([]string, len(opts.Namenodes))
	for i, nn := range opts.Namenodes {
		if !strings.Contains(nn, "://") {
			nn = "http://" + nn
		}
		baseURLs[i] = strings.TrimRight(nn, "/")
	}

	return &Client{
		baseURLs:   baseURLs,
		user:       opts.User,
		requestID:  opts.RequestID,
		httpClient: retryClient,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// checkRetry retries transport failures and 5xx responses, but never a
// response that already carries a RemoteException.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// remoteExceptionBody is the JSON error envelope returned by WebHDFS.
type remoteExceptionBody struct {
	RemoteException struct {
		Exception     string `json:"exception"`
		JavaClassName string `json:"javaClassName"`
		Message       string `json:"message"`
	} `json:"RemoteException"`
}

// errNoNamenode is returned when every namenode failed at the transport
// level or was in standby.
var errNoNamenode = errors.New("no active namenode")

// doRequest performs one WebHDFS operation on path and decodes a
// successful JSON response into out. Namenodes are tried starting with the
// last one that answered; standby namenodes and transport failures move on
// to the next.
func (c *Client) doRequest(ctx context.Context, method, op, path string, params url.Values, out interface{}) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("op", op)
	if c.user != "" {
		query.Set("user.name", c.user)
	}
	reqPath := webhdfsPrefix + (&url.URL{Path: path}).EscapedPath() + "?" + query.Encode()

	c.mu.Lock()
	start := c.active
	c.mu.Unlock()

	var lastErr error
	for i := range c.baseURLs {
		idx := (start + i) % len(c.baseURLs)
		if i > 0 {
			c.metrics.ObserveFailover()
		}

		err := c.doOnce(ctx, method, op, c.baseURLs[idx]+reqPath, out)
		var re *types.RemoteError
		switch {
		case errors.As(err, &re) && re.Subject == types.SubjectStandby:
			c.logger.Debug("namenode in standby", zap.String("namenode", c.baseURLs[idx]))
			lastErr = err
			continue
		case errors.As(err, &re):
			c.setActive(idx)
			return err
		case err != nil && ctx.Err() == nil && len(c.baseURLs) > 1:
			c.logger.Debug("namenode unreachable", zap.String("namenode", c.baseURLs[idx]), zap.Error(err))
			lastErr = err
			continue
		case err != nil:
			return err
		}
		c.setActive(idx)
		return nil
	}
	return fmt.Errorf("%w: %w", errNoNamenode, lastErr)
}

func (c *Client) setActive(idx int) {
	c.mu.Lock()
	c.active = idx
	c.mu.Unlock()
}

func (c *Client) doOnce(ctx context.Context, method, op, reqURL string, out interface{}) error {
	started := time.Now()
	outcome := "ok"
	defer func() {
		c.metrics.ObserveRequest(op, outcome, time.Since(started))
	}()

	req, err := retryablehttp.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.requestID != "" {
		req.Header.Set("X-Request-Id", c.requestID)
	}

	c.logger.Debug("webhdfs request", zap.String("method", method), zap.String("url", reqURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport"
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope remoteExceptionBody
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.RemoteException.JavaClassName != "" {
			outcome = envelope.RemoteException.JavaClassName
			return &types.RemoteError{
				Subject: envelope.RemoteException.JavaClassName,
				Body:    envelope.RemoteException.Message,
			}
		}
		outcome = fmt.Sprintf("http_%d", resp.StatusCode)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
