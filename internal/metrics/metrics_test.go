package metrics

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"", "/"},
		{"/health", "/health"},
		{"/metrics", "/metrics"},
		{"/docs", "/docs"},
		{"/docs/", "/docs"},
		{"/openapi.json", "/openapi"},
		{"/openapi.yaml", "/openapi"},
		{"/bucket.s3.example.com/info/lfs/objects/batch", "/{locator}/objects/batch"},
		{"/other.example.org/objects/batch", "/{locator}/objects/batch"},
		{"/invalid", "/{other}"},
		{"/docs.s3.example.com/objects/batch", "/{locator}/objects/batch"},
		{"/openapi.example.com/info/lfs/objects/batch", "/{locator}/objects/batch"},
		{"/docsy", "/{other}"},
		{"/openapi-3.0.yaml", "/openapi"},
		{"/openapi.example.com/info/lfs/locks", "/{other}"},
		{"/docs.s3.example.com/info/lfs/locks", "/{other}"},
		{"/bucket.s3.example.com/info/lfs/locks", "/{other}"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := NormalizePath(tt.path)
			if got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetricsRegistered(t *testing.T) {
	Register()
	// Second call must be a no-op rather than a duplicate registration panic.
	Register()

	HTTPRequestsTotal.WithLabelValues("POST", "/{locator}/objects/batch", "200").Inc()
	HTTPRequestDuration.WithLabelValues("POST", "/{locator}/objects/batch").Observe(0.001)
	HTTPRequestSize.WithLabelValues("POST", "/{locator}/objects/batch").Observe(128)
	HTTPResponseSize.WithLabelValues("POST", "/{locator}/objects/batch").Observe(2048)
	BatchRequestsTotal.WithLabelValues("upload", "200").Inc()
	BatchObjects.WithLabelValues("upload").Observe(3)
	ObjectsSignedTotal.WithLabelValues("upload").Add(3)
	SignDuration.Observe(0.0002)
}
