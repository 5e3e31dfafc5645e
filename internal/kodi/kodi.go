// Package kodi asks a Kodi instance to rescan its video library.
package kodi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/console"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 9870
)

var (
	ErrTooManyAt    = errors.New("too many '@' in the Kodi parameters")
	ErrTooManyColon = errors.New("too many ':' in the host:port part of Kodi parameters")
	ErrBadPort      = errors.New("port should be numeric")
)

// Target is where and how to reach Kodi's JSON-RPC endpoint.
type Target struct {
	Login    string
	Password string
	Host     string
	Port     int
}

// ParseTarget reads "login:pass@host:port". Credentials are optional and
// host and port fall back to localhost:9870.
func ParseTarget(raw string) (Target, error) {
	t := Target{Host: DefaultHost, Port: DefaultPort}
	raw = strings.TrimSpace(raw)

	hostPort := raw
	parts := strings.Split(raw, "@")
	switch len(parts) {
	case 1:
	case 2:
		creds := strings.SplitN(parts[0], ":", 2)
		t.Login = creds[0]
		if len(creds) == 2 {
			t.Password = creds[1]
		}
		hostPort = parts[1]
	default:
		return Target{}, ErrTooManyAt
	}
	if hostPort == "" {
		return t, nil
	}

	hp := strings.Split(hostPort, ":")
	if len(hp) > 2 {
		return Target{}, ErrTooManyColon
	}
	if hp[0] != "" {
		t.Host = hp[0]
	}
	if len(hp) == 2 {
		port, err := strconv.Atoi(hp[1])
		if err != nil || port <= 0 || port > 65535 {
			return Target{}, ErrBadPort
		}
		t.Port = port
	}
	return t, nil
}

// BaseURL returns the HTTP root of the Kodi web server.
func (t Target) BaseURL() string {
	return "http://" + net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String renders the target with the password masked.
func (t Target) String() string {
	host := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	if t.Login == "" {
		return host
	}
	return fmt.Sprintf("%s:***@%s", t.Login, host)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      string `json:"id"`
}

// Notifier triggers library scans.
type Notifier struct {
	client *resty.Client
	target Target
	log    zerolog.Logger
}

// NewNotifier returns a notifier for target.
func NewNotifier(target Target, logger zerolog.Logger) *Notifier {
	client := resty.New().
		SetBaseURL(target.BaseURL()).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json")
	if target.Login != "" {
		client.SetBasicAuth(target.Login, target.Password)
	}
	return &Notifier{
		client: client,
		target: target,
		log:    console.Component(logger, "kodi"),
	}
}

// Refresh starts a VideoLibrary.Scan. The outcome is logged and reported but
// never fatal.
func (n *Notifier) Refresh(ctx context.Context) bool {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", Method: "VideoLibrary.Scan", ID: "tvshelf"}).
		Post("/jsonrpc")
	if err != nil {
		n.log.Error().Err(err).Str("target", n.target.String()).Msg("Failed to trigger Kodi Database update (unreachable)")
		return false
	}
	if resp.StatusCode() != http.StatusOK {
		n.log.Error().Str("target", n.target.String()).Msgf("Failed to trigger Kodi Database update (%d)", resp.StatusCode())
		return false
	}
	console.Success(n.log).Msg("Kodi Database update started")
	return true
}
