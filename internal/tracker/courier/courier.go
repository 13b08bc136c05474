// Package courier holds one adapter per courier back end. Every adapter maps
// its wildly different payload to the canonical SourceResult at this boundary
// and never lets a failure escape: bad networks, bad payloads and "not found"
// sentinels all come back as the none-result.
package courier

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single adapter call.
const DefaultTimeout = 120 * time.Second

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// newHTTPClient builds the client adapters share. insecure skips TLS
// verification for couriers whose tracking hosts serve broken chains.
func newHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
