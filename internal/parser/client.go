package parser

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultFetchTimeout bounds a single page request.
const DefaultFetchTimeout = 30 * time.Second

// NewHTTPClient builds the client used by HTMLParser.
//
// When proxyAddress is non-empty every request is dialed through that SOCKS5
// proxy. The client also understands file:// URLs, which lets a crawl run
// against an HTML tree on local disk. Redirects from http(s) to file:// are
// refused.
func NewHTTPClient(timeout time.Duration, proxyAddress string) (*http.Client, error) {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected default transport type %T", http.DefaultTransport)
	}
	transport = transport.Clone()

	if proxyAddress != "" {
		if _, _, err := net.SplitHostPort(proxyAddress); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, proxyAddress)
		}

		// nil auth: a local SOCKS port does not require credentials
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer %T does not support contexts", dialer)
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer.DialContext
	}

	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &http.Client{
		Transport:     transport,
		Timeout:       timeout,
		CheckRedirect: checkRedirect,
	}, nil
}

// maxRedirects matches the limit of net/http's default redirect policy.
const maxRedirects = 10

// checkRedirect keeps the default redirect limit and refuses to hop from a
// network page onto the local disk.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if strings.EqualFold(req.URL.Scheme, "file") && !strings.EqualFold(via[0].URL.Scheme, "file") {
		return fmt.Errorf("%w: %s", ErrFileRedirect, req.URL)
	}
	return nil
}
