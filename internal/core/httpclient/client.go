// Package httpclient configures the HTTP client used to call the mart
// service.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds one service call end to end. Result queries can
// run long on the server side before the first byte arrives, so this is
// deliberately generous; catalog calls finish far earlier.
const DefaultTimeout = 3 * time.Minute

// NewOutbound creates a new outbound http client
func NewOutbound(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
