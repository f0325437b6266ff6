package gateway

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
)

// PoolConfig contains connection pool settings shared by every backend client.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// DefaultPoolConfig returns default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Client is the reusable HTTP client bound to one backend.
type Client struct {
	backend   Backend
	baseURL   *url.URL
	transport *http.Transport
	http      *http.Client
}

func newClient(d Descriptor, pool PoolConfig) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        pool.MaxIdleConns,
		MaxIdleConnsPerHost: pool.MaxIdleConnsPerHost,
		MaxConnsPerHost:     pool.MaxConnsPerHost,
		IdleConnTimeout:     pool.IdleConnTimeout,
	}

	return &Client{
		backend:   d.Backend,
		baseURL:   d.BaseURL,
		transport: transport,
		// No client-level timeout; requests are bounded by their context.
		http: &http.Client{Transport: transport},
	}
}

// Backend returns the backend this client talks to.
func (c *Client) Backend() Backend { return c.backend }

// BaseURL returns a copy of the backend's base address.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// resolve turns a relative resource path into an absolute backend URL.
func (c *Client) resolve(path string) *url.URL {
	return c.baseURL.ResolveReference(&url.URL{Path: path})
}

// Registry holds one Client per backend. It is populated once by NewRegistry
// and read-only afterwards, so it is safe for concurrent use without locking.
type Registry struct {
	clients map[Backend]*Client
}

// NewRegistry registers the given backends. It fails if a backend appears
// twice, has no base address, or if a route in Routes references a backend
// that was not registered.
func NewRegistry(descs []Descriptor, pool PoolConfig) (*Registry, error) {
	var result *multierror.Error

	clients := make(map[Backend]*Client, len(descs))
	for _, d := range descs {
		if d.BaseURL == nil {
			result = multierror.Append(result, fmt.Errorf("backend %s: missing base url", d.Backend))
			continue
		}
		if _, dup := clients[d.Backend]; dup {
			result = multierror.Append(result, fmt.Errorf("backend %s: registered more than once", d.Backend))
			continue
		}
		clients[d.Backend] = newClient(d, pool)
	}

	for _, r := range Routes {
		if _, ok := clients[r.Backend]; !ok {
			result = multierror.Append(result, fmt.Errorf("route %q: backend %s is not registered", r.Resource, r.Backend))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Registry{clients: clients}, nil
}

// Client returns the client registered for b. Repeated calls return the
// same instance.
func (reg *Registry) Client(b Backend) (*Client, error) {
	c, ok := reg.clients[b]
	if !ok {
		return nil, &Error{
			Kind:    KindUnknownBackend,
			Op:      "client",
			Backend: b.String(),
			Message: "no client registered",
			Err:     ErrUnknownBackend,
		}
	}
	return c, nil
}

// Close releases idle connections held by every client.
func (reg *Registry) Close() {
	for _, c := range reg.clients {
		c.transport.CloseIdleConnections()
	}
}
