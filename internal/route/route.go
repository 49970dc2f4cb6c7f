// Package route classifies inbound requests for the LFS gateway.
package route

import (
	"net/http"
	"strings"
)

// Kind is the disposition of a request.
type Kind int

const (
	// NotFound is any request the gateway does not serve.
	NotFound Kind = iota
	// Redirect is GET on the root path.
	Redirect
	// Batch is POST on a path ending in /objects/batch.
	Batch
)

// BatchSuffix is the trailing path of the LFS batch endpoint. Everything
// before it (bucket locator, info/lfs, repository names) is kept in the
// path for the validator.
const BatchSuffix = "/objects/batch"

// String returns the kind name, used as a log attribute.
func (k Kind) String() string {
	switch k {
	case Redirect:
		return "redirect"
	case Batch:
		return "batch"
	default:
		return "not_found"
	}
}

// Classify maps method and path to a Kind. It has no side effects.
func Classify(method, path string) Kind {
	if method == http.MethodGet && path == "/" {
		return Redirect
	}
	if method == http.MethodPost && strings.HasSuffix(path, BatchSuffix) {
		return Batch
	}
	return NotFound
}
