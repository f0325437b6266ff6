// Package gateway forwards resource requests to the backend service that owns
// them and hands the raw response back to the caller.
//
// A request flows through three pieces: the Registry hands out the pooled
// client for a backend, NewRequest builds the outbound request, and the
// Dispatcher sends it and reads the body. Which backend serves which resource
// is fixed by the Routes table.
package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Backend identifies one of the downstream data services.
type Backend int

const (
	// RDS is the relational data service (users, products).
	RDS Backend = iota + 1
	// MDB is the document data service (orders, posts).
	MDB
)

// Backends lists every known backend in declaration order.
var Backends = []Backend{RDS, MDB}

// String returns the configuration name of the backend.
func (b Backend) String() string {
	switch b {
	case RDS:
		return "RDS"
	case MDB:
		return "MDB"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend resolves a configuration name such as "rds" or "MDB".
func ParseBackend(name string) (Backend, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "RDS":
		return RDS, nil
	case "MDB":
		return MDB, nil
	}
	return 0, &Error{
		Kind:    KindUnknownBackend,
		Op:      "parse",
		Backend: name,
		Message: "unknown backend",
		Err:     ErrUnknownBackend,
	}
}

// Descriptor binds a backend to its base address.
type Descriptor struct {
	Backend Backend
	BaseURL *url.URL
}

// NewDescriptor parses rawURL and normalises it so that relative resource
// paths resolve beneath it.
func NewDescriptor(b Backend, rawURL string) (Descriptor, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Descriptor{}, fmt.Errorf("backend %s: invalid base url: %w", b, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Descriptor{}, fmt.Errorf("backend %s: base url %q must be absolute", b, rawURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return Descriptor{Backend: b, BaseURL: u}, nil
}
