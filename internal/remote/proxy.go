package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedProxy is returned when a proxy string does not parse as
// host:port:user:pass.
var ErrMalformedProxy = errors.New("malformed proxy")

// Proxy is a parsed host:port:user:pass tuple.
type Proxy struct {
	Host     string
	Port     int
	Username string
	Password string
}

// ParseProxy parses "host:port:user:pass". All four fields are required;
// formatting and escaping beyond the split is the supplier's concern.
func ParseProxy(s string) (Proxy, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 4 {
		return Proxy{}, fmt.Errorf("%w: expected host:port:user:pass, got %d parts", ErrMalformedProxy, len(parts))
	}
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Proxy{}, fmt.Errorf("%w: empty field %d", ErrMalformedProxy, i+1)
		}
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil || port <= 0 || port > 65535 {
		return Proxy{}, fmt.Errorf("%w: bad port %q", ErrMalformedProxy, parts[1])
	}
	return Proxy{
		Host:     parts[0],
		Port:     port,
		Username: parts[2],
		Password: parts[3],
	}, nil
}

// URL renders the proxy as a socks5 URL for an http.Transport.
func (p Proxy) URL() *url.URL {
	return &url.URL{
		Scheme: "socks5",
		User:   url.UserPassword(p.Username, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
}
