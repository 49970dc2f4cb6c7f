// Package presign produces the signed action URLs handed to LFS clients.
//
// Signing is delegated to a Signer. The production Signer is S3Presigner,
// which uses the AWS SDK presign client: it computes a SigV4 query-string
// signature locally and never contacts the object store.
package presign

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Request describes one URL to sign.
type Request struct {
	// Method is PUT for uploads and GET for downloads.
	Method string
	Bucket string
	Region string
	// Key is the object key, the LFS oid.
	Key             string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint is the object store host, optionally with a port.
	Endpoint  string
	ExpiresIn time.Duration
}

// Signer returns a URL authorizing req.Method on req.Key for req.ExpiresIn.
// Implementations must be safe for concurrent use.
type Signer interface {
	Sign(ctx context.Context, req Request) (string, error)
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc func(ctx context.Context, req Request) (string, error)

// Sign calls f(ctx, req).
func (f SignerFunc) Sign(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// PresignAPI is the subset of the SDK presign client used by S3Presigner.
// It allows substituting the SDK in tests.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Presigner signs URLs for any S3-compatible endpoint. Credentials,
// region and endpoint come from each Request and are applied as per-call
// client options, so one S3Presigner serves all requests without shared
// mutable state.
type S3Presigner struct {
	client PresignAPI
	scheme string
}

// NewS3Presigner builds a presigner on top of base. base supplies SDK
// plumbing only; its credentials, region and endpoint are overridden per
// call. scheme is the URL scheme of the storage endpoints ("https" or "http").
func NewS3Presigner(base aws.Config, scheme string) *S3Presigner {
	client := s3.NewFromConfig(base)
	return NewS3PresignerWithClient(s3.NewPresignClient(client), scheme)
}

// NewS3PresignerWithClient builds a presigner around an existing presign client.
func NewS3PresignerWithClient(client PresignAPI, scheme string) *S3Presigner {
	if scheme == "" {
		scheme = "https"
	}
	return &S3Presigner{client: client, scheme: strings.ToLower(scheme)}
}

// Sign implements Signer.
func (p *S3Presigner) Sign(ctx context.Context, req Request) (string, error) {
	optFn := p.presignOptions(req)

	var (
		out *v4.PresignedHTTPRequest
		err error
	)
	switch req.Method {
	case http.MethodPut:
		out, err = p.client.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(req.Bucket),
			Key:    aws.String(req.Key),
		}, optFn)
	case http.MethodGet:
		out, err = p.client.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(req.Bucket),
			Key:    aws.String(req.Key),
		}, optFn)
	default:
		return "", fmt.Errorf("unsupported presign method %q", req.Method)
	}
	if err != nil {
		return "", fmt.Errorf("presigning %s %s/%s: %w", req.Method, req.Bucket, req.Key, err)
	}
	return out.URL, nil
}

func (p *S3Presigner) presignOptions(req Request) func(*s3.PresignOptions) {
	endpoint := p.scheme + "://" + req.Endpoint
	creds := credentials.NewStaticCredentialsProvider(req.AccessKeyID, req.SecretAccessKey, "")

	return func(po *s3.PresignOptions) {
		po.Expires = req.ExpiresIn
		po.ClientOptions = append(po.ClientOptions, func(o *s3.Options) {
			o.Region = req.Region
			o.Credentials = creds
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
}

// ErrorAttrs returns slog attributes describing an SDK operation failure
// in err, or nil when err did not come from the SDK.
func ErrorAttrs(err error) []any {
	var opErr *smithy.OperationError
	if !errors.As(err, &opErr) {
		return nil
	}
	attrs := []any{"sdk_service", opErr.Service(), "sdk_operation", opErr.Operation()}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs, "sdk_error_code", apiErr.ErrorCode())
	}
	return attrs
}
