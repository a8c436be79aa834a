package config

import "time"

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
}

type Client struct{}

var _ ClientConfig = Client{}

// GetRequestTimeout bounds every outbound call at the transport. Zero disables it.
func (Client) GetRequestTimeout() time.Duration {
	return getDuration("REQUEST_TIMEOUT", 15*time.Second)
}

// GetRefreshTimeout bounds the shared token refresh call.
func (Client) GetRefreshTimeout() time.Duration {
	return getDuration("REFRESH_TIMEOUT", 30*time.Second)
}

// GetRateLimit is the outbound requests per second. Zero or less disables limiting.
func (Client) GetRateLimit() float64 {
	return getFloat("API_RATE_LIMIT", 0)
}

func (Client) GetRateBurst() int {
	return getInt("API_RATE_BURST", 5)
}
