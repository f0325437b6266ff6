package gateway

// Route ties a resource exposed by the gateway to the backend that owns it.
type Route struct {
	Resource string
	Backend  Backend
	// NumericID is set when the backend keys the resource by integer.
	NumericID bool
}

// Routes is the static routing table. Each resource maps to exactly one
// backend for the life of the process.
var Routes = []Route{
	{Resource: "user", Backend: RDS},
	{Resource: "product", Backend: RDS, NumericID: true},
	{Resource: "order", Backend: MDB},
	{Resource: "post", Backend: MDB},
}

// Lookup returns the route for a resource name.
func Lookup(resource string) (Route, bool) {
	for _, r := range Routes {
		if r.Resource == resource {
			return r, true
		}
	}
	return Route{}, false
}
