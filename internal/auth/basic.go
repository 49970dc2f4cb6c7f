// Package auth extracts object store credentials from the Basic
// Authorization header of LFS batch requests. The gateway does not check
// the credentials itself; they are used to sign URLs, and the object store
// rejects them later if they are wrong.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	lfserr "github.com/lfsgate/lfsgate/internal/errors"
)

// basicPrefix is the Authorization scheme marker, including the separator.
const basicPrefix = "Basic "

// Credential is an object store key pair.
type Credential struct {
	AccessKeyID     string
	SecretAccessKey string
}

// LogValue keeps the secret out of log records.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_key_id", c.AccessKeyID),
		slog.String("secret_access_key", "(hidden)"),
	)
}

// String implements fmt.Stringer without the secret.
func (c Credential) String() string {
	return fmt.Sprintf("Credential{AccessKeyID: %s}", c.AccessKeyID)
}

var (
	errMissingHeader = errors.New("missing Authorization header")
	errNotBasic      = errors.New("authorization scheme is not Basic")
	errNoSeparator   = errors.New("credential has no ':' separator")
	errEmptyField    = errors.New("credential has an empty access key or secret")
)

// ParseBasic decodes the value of an Authorization header of the form
// "Basic base64(accessKeyId:secretAccessKey)". The decoded text is split on
// the first colon, so the secret may itself contain colons. Every failure,
// including a missing header, is ErrUnauthorized.
func ParseBasic(header string) (Credential, error) {
	if header == "" {
		return Credential{}, lfserr.ErrUnauthorized.WithCause(errMissingHeader)
	}
	if !strings.HasPrefix(header, basicPrefix) {
		return Credential{}, lfserr.ErrUnauthorized.WithCause(errNotBasic)
	}

	token := strings.TrimSpace(header[len(basicPrefix):])
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		// Some clients omit the padding.
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(token, "="))
	}
	if err != nil {
		return Credential{}, lfserr.ErrUnauthorized.WithCause(fmt.Errorf("decoding credential: %w", err))
	}

	accessKeyID, secret, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Credential{}, lfserr.ErrUnauthorized.WithCause(errNoSeparator)
	}
	if accessKeyID == "" || secret == "" {
		return Credential{}, lfserr.ErrUnauthorized.WithCause(errEmptyField)
	}
	return Credential{AccessKeyID: accessKeyID, SecretAccessKey: secret}, nil
}

// FromRequest reads the credential from r's Authorization header.
func FromRequest(r *http.Request) (Credential, error) {
	return ParseBasic(r.Header.Get("Authorization"))
}
