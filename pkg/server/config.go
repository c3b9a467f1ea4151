package server

import "time"

// SessionConfig holds configuration for individual live sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// SendBuffer is the size of the outgoing frame channel.
	// Default: 64.
	SendBuffer int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		SendBuffer:        64,
	}
}

// Config holds server-level configuration.
type Config struct {
	// Address is the listen address. Default: ":8080".
	Address string

	// ReadBufferSize is the WebSocket read buffer size. Default: 4KB.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size. Default: 4KB.
	WriteBufferSize int

	// CheckOrigin validates the Origin header on WebSocket upgrade.
	// Default accepts same-host origins only.
	CheckOrigin func(origin, host string) bool

	// SessionConfig configures live sessions.
	SessionConfig *SessionConfig

	// ShutdownTimeout bounds graceful shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout for the HTTP server. Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// IdleTimeout for the HTTP server. Default: 2 minutes.
	IdleTimeout time.Duration

	// MetricsPath is where Prometheus metrics are served.
	// Empty disables the endpoint. Default: "/metrics".
	MetricsPath string

	// LivePath is the WebSocket endpoint for live updates.
	// Default: "/_glint/live".
	LivePath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MetricsPath:       "/metrics",
		LivePath:          "/_glint/live",
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	defaults := DefaultConfig()
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.SessionConfig == nil {
		out.SessionConfig = defaults.SessionConfig
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.LivePath == "" {
		out.LivePath = defaults.LivePath
	}
	return &out
}
