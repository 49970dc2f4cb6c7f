// Package lfs holds the Git LFS batch API wire model and the request-scoped
// values derived from it: the storage target encoded in the request path,
// the decoded batch request and the assembled batch response.
//
// Batch API reference:
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md
package lfs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	lfserr "github.com/lfsgate/lfsgate/internal/errors"
)

// MediaType is the LFS JSON media type used for batch responses.
const MediaType = "application/vnd.git-lfs+json"

// TransferBasic is the only transfer adapter the gateway offers.
const TransferBasic = "basic"

// ExpiresIn is the validity of every signed action, in seconds.
const ExpiresIn = 3600

// Region is the signing region used for every storage endpoint.
const Region = "us-east-1"

// Operation is the transfer direction requested by the client.
type Operation string

const (
	OperationUpload   Operation = "upload"
	OperationDownload Operation = "download"
)

// Valid reports whether o is upload or download.
func (o Operation) Valid() bool {
	return o == OperationUpload || o == OperationDownload
}

// Method returns the HTTP verb the client uses against the signed URL.
func (o Operation) Method() string {
	if o == OperationUpload {
		return http.MethodPut
	}
	return http.MethodGet
}

// ObjectSpec is one object of a batch request.
type ObjectSpec struct {
	OID  string `json:"oid"`
	Size int64  `json:"size"`
}

// Ref is the optional ref the client is operating on. It is accepted and ignored.
type Ref struct {
	Name string `json:"name"`
}

// BatchRequest is the body of POST .../objects/batch.
type BatchRequest struct {
	Operation Operation    `json:"operation"`
	Transfers []string     `json:"transfers,omitempty"`
	Ref       *Ref         `json:"ref,omitempty"`
	Objects   []ObjectSpec `json:"objects"`
	HashAlgo  string       `json:"hash_algo,omitempty"`
}

// Action is a signed transfer action.
type Action struct {
	Href      string `json:"href"`
	ExpiresIn int    `json:"expires_in"`
}

// ResponseObject is one object of a batch response.
type ResponseObject struct {
	OID           string               `json:"oid"`
	Size          int64                `json:"size"`
	Authenticated bool                 `json:"authenticated"`
	Actions       map[Operation]Action `json:"actions"`
}

// BatchResponse is the body of a successful batch response.
type BatchResponse struct {
	Transfer string           `json:"transfer"`
	Objects  []ResponseObject `json:"objects"`
}

// Target is the storage location addressed by the request path.
type Target struct {
	Bucket   string
	Endpoint string
}

// ParseTarget extracts the bucket and endpoint from a batch path of the form
// /<bucket>.<endpoint>/[...]/objects/batch. Only the first segment is
// inspected; anything between it and the objects/batch suffix is ignored.
func ParseTarget(path string) (Target, error) {
	segments := strings.Split(path, "/")
	// Drop the leading empty segment and the trailing objects/batch pair.
	if len(segments) < 4 {
		return Target{}, lfserr.ErrInvalidBucketFormat.WithCause(fmt.Errorf("no bucket segment in %q", path))
	}
	locator := segments[1]

	bucket, endpoint, ok := strings.Cut(locator, ".")
	if !ok {
		return Target{}, lfserr.ErrInvalidBucketFormat.WithCause(fmt.Errorf("segment %q has no '.'", locator))
	}
	if bucket == "" || endpoint == "" {
		return Target{}, lfserr.ErrInvalidBucketFormat.WithCause(fmt.Errorf("segment %q has an empty bucket or endpoint", locator))
	}
	return Target{Bucket: bucket, Endpoint: endpoint}, nil
}

// DecodeBatchRequest reads a batch request from r in three steps. A body that
// is not a single well-formed JSON value (or cannot be read) yields
// ErrInvalidJSON. Any well-formed value whose operation is not the string
// "upload" or "download" yields ErrUnsupportedOperation, whatever its shape.
// Only then are the remaining fields decoded strictly, so a bad objects
// list is ErrInvalidJSON again.
func DecodeBatchRequest(r io.Reader) (*BatchRequest, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, lfserr.ErrInvalidJSON.WithCause(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("trailing data after JSON value")
		}
		return nil, lfserr.ErrInvalidJSON.WithCause(err)
	}

	op, err := peekOperation(raw)
	if err != nil {
		return nil, lfserr.ErrUnsupportedOperation.WithCause(err)
	}

	var req BatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, lfserr.ErrInvalidJSON.WithCause(err)
	}
	req.Operation = op
	if req.Objects == nil {
		req.Objects = []ObjectSpec{}
	}
	return &req, nil
}

// peekOperation reads the operation field of a well-formed JSON value
// without assuming the value is an object.
func peekOperation(raw json.RawMessage) (Operation, error) {
	var head struct {
		Operation json.RawMessage `json:"operation"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("body is not an object: %w", err)
	}
	var op Operation
	if err := json.Unmarshal(head.Operation, &op); err != nil || !op.Valid() {
		return "", fmt.Errorf("operation %s", head.Operation)
	}
	return op, nil
}

// NewBatchResponse pairs each requested object with the action at the same
// index. actions must be in request order.
func NewBatchResponse(req *BatchRequest, actions []Action) (*BatchResponse, error) {
	if len(actions) != len(req.Objects) {
		return nil, fmt.Errorf("have %d actions for %d objects", len(actions), len(req.Objects))
	}

	objects := make([]ResponseObject, len(req.Objects))
	for i, obj := range req.Objects {
		objects[i] = ResponseObject{
			OID:           obj.OID,
			Size:          obj.Size,
			Authenticated: true,
			Actions: map[Operation]Action{
				req.Operation: actions[i],
			},
		}
	}
	return &BatchResponse{
		Transfer: TransferBasic,
		Objects:  objects,
	}, nil
}
