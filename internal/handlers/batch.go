// Package handlers implements the LFS batch endpoint.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lfsgate/lfsgate/internal/auth"
	lfserr "github.com/lfsgate/lfsgate/internal/errors"
	"github.com/lfsgate/lfsgate/internal/httputil"
	"github.com/lfsgate/lfsgate/internal/lfs"
	"github.com/lfsgate/lfsgate/internal/metrics"
	"github.com/lfsgate/lfsgate/internal/presign"
)

// unknownOperation labels metrics for requests rejected before the body
// was decoded.
const unknownOperation = "unknown"

// BatchHandler serves POST .../objects/batch. It validates the request,
// signs one URL per object and writes the batch response. It keeps no
// state between requests.
type BatchHandler struct {
	signer      presign.Signer
	concurrency int
	maxBody     int64
	logger      *slog.Logger
}

// NewBatchHandler creates a BatchHandler. concurrency bounds the signing
// fan-out of a single batch and maxBody caps the request body in bytes.
func NewBatchHandler(signer presign.Signer, concurrency int, maxBody int64, logger *slog.Logger) *BatchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchHandler{
		signer:      signer,
		concurrency: concurrency,
		maxBody:     maxBody,
		logger:      logger,
	}
}

// validated is a batch request that passed every check.
type validated struct {
	cred   auth.Credential
	target lfs.Target
	batch  *lfs.BatchRequest
}

// validate runs the checks in order and stops at the first failure:
// credential, bucket locator, JSON body, operation.
func (h *BatchHandler) validate(w http.ResponseWriter, r *http.Request) (*validated, error) {
	cred, err := auth.FromRequest(r)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("Credential decoded", "access_key_id", cred.AccessKeyID, "secret", "(hidden)")

	target, err := lfs.ParseTarget(r.URL.Path)
	if err != nil {
		return nil, err
	}

	batch, err := lfs.DecodeBatchRequest(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return nil, err
	}
	return &validated{cred: cred, target: target, batch: batch}, nil
}

// ServeHTTP implements http.Handler.
func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", w.Header().Get(httputil.RequestIDHeader))

	v, err := h.validate(w, r)
	if err != nil {
		h.fail(w, r, logger, unknownOperation, err)
		return
	}
	op := string(v.batch.Operation)

	logger.Info(fmt.Sprintf("%s request for %d object(s)", op, len(v.batch.Objects)),
		"operation", op,
		"objects", len(v.batch.Objects),
		"bucket", v.target.Bucket,
		"endpoint", v.target.Endpoint,
		"access_key_id", v.cred.AccessKeyID,
	)
	metrics.BatchObjects.WithLabelValues(op).Observe(float64(len(v.batch.Objects)))

	start := time.Now()
	actions, err := presign.SignBatch(r.Context(), h.signer, h.concurrency, v.cred, v.target, v.batch)
	metrics.SignDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		h.fail(w, r, logger, op, err)
		return
	}
	metrics.ObjectsSignedTotal.WithLabelValues(op).Add(float64(len(actions)))

	resp, err := lfs.NewBatchResponse(v.batch, actions)
	if err != nil {
		h.fail(w, r, logger, op, err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, lfs.MediaType, resp); err != nil {
		logger.Error("Writing batch response failed", "error", err)
		metrics.BatchRequestsTotal.WithLabelValues(op, strconv.Itoa(http.StatusInternalServerError)).Inc()
		return
	}
	metrics.BatchRequestsTotal.WithLabelValues(op, strconv.Itoa(http.StatusOK)).Inc()
}

// fail maps err to its response. Validation failures are logged as
// warnings with their cause; anything else is an internal error, logged
// in full and answered with an opaque 500.
func (h *BatchHandler) fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	e := lfserr.From(err)

	if e.HTTPStatus >= http.StatusInternalServerError {
		attrs := []any{"method", r.Method, "path", r.URL.Path, "error", err}
		attrs = append(attrs, presign.ErrorAttrs(err)...)
		logger.Error("Batch request failed", attrs...)
	} else {
		attrs := []any{"method", r.Method, "path", r.URL.Path, "status", e.HTTPStatus, "reason", e.Message}
		if e.Err != nil {
			attrs = append(attrs, "cause", e.Err.Error())
		}
		logger.Warn("Batch request rejected", attrs...)
	}

	metrics.BatchRequestsTotal.WithLabelValues(op, strconv.Itoa(e.HTTPStatus)).Inc()
	httputil.WriteError(w, e)
}
