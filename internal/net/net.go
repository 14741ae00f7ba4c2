package net

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"pi-monitor/internal/net/config"

	"github.com/rs/zerolog/log"
)

// MaxBodySize bounds how much of a response body is kept for assertions.
const MaxBodySize = 1 << 20

const userAgent = "pi-monitor/1.0"

// NetworkConfig holds the probe options shared by every endpoint.
type NetworkConfig struct {
	FollowRedirects bool
	SkipSSL         bool
}

// Check performs one GET against target, bounded by timeout, and classifies
// the result. It never returns an error: every failure mode is reported as a
// TransportFailure outcome.
func (nc *NetworkConfig) Check(ctx context.Context, target string, timeout time.Duration) config.Outcome {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: nc.SkipSSL || isIPAddress(target)},
		},
	}
	defer client.CloseIdleConnections()

	if !nc.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return config.Failed(target, start, time.Since(start), fmt.Sprintf("invalid request: %v", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		description := describeError(ctx, err)
		log.Debug().Str("url", target).Err(err).Msg("probe failed")
		return config.Failed(target, start, time.Since(start), description)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return config.Failed(target, start, time.Since(start), describeError(ctx, err))
	}

	return config.Succeeded(target, start, time.Since(start), resp.StatusCode, string(body))
}

func describeError(ctx context.Context, err error) string {
	var dnsErr *net.DNSError
	var opErr *net.OpError

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded),
		os.IsTimeout(err):
		return "timeout"
	case errors.As(err, &dnsErr):
		return fmt.Sprintf("dns lookup failed for %s", dnsErr.Name)
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "connection closed prematurely (EOF)"
	case errors.As(err, &opErr):
		return fmt.Sprintf("network operation error for %s: %v", opErr.Op, opErr.Err)
	}

	msg := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		msg = urlErr.Err.Error()
	}
	return strings.TrimSpace(msg)
}

func isIPAddress(host string) bool {
	u, err := url.Parse(host)
	if err != nil {
		return false
	}
	hostname := u.Hostname()

	return net.ParseIP(hostname) != nil
}
