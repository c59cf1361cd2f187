// Package auth signs venue API requests with RSA-PSS signatures.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Request header names expected by the venue.
const (
	HeaderAccessKey = "KALSHI-ACCESS-KEY"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
)

// Signer produces per-request signatures from an access key ID and an RSA
// private key. It is read-only after construction and safe for concurrent
// use.
type Signer struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey
}

// NewSigner loads the private key from a PEM file and returns a ready
// Signer. A key that cannot be parsed is a startup configuration error.
func NewSigner(keyID, privateKeyPath string) (*Signer, error) {
	if keyID == "" {
		return nil, fmt.Errorf("access key ID is required")
	}
	if privateKeyPath == "" {
		return nil, fmt.Errorf("private key path is required")
	}

	key, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	return &Signer{KeyID: keyID, PrivateKey: key}, nil
}

// LoadPrivateKey loads an RSA private key from a PEM file, accepting
// PKCS#8 and PKCS#1 encodings.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return rsaKey, nil
}

// Headers returns the authentication headers for a request signed at the
// current instant. The venue accepts a timestamp only within a window of a
// few seconds, so callers must attach the result immediately before
// transmission and never reuse it.
func (s *Signer) Headers(method, path string) (map[string]string, error) {
	ts := time.Now().UnixMilli()

	sig, err := s.Sign(ts, method, path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderAccessKey: s.KeyID,
		HeaderTimestamp: strconv.FormatInt(ts, 10),
		HeaderSignature: sig,
	}, nil
}

// Sign produces a base64 RSA-PSS signature over the canonical message for
// the given timestamp, method and path. The query string never
// participates in signing.
func (s *Signer) Sign(timestampMs int64, method, path string) (string, error) {
	message := CanonicalMessage(timestampMs, method, path)
	hashed := sha256.Sum256([]byte(message))

	sig, err := rsa.SignPSS(
		rand.Reader,
		s.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(sig), nil
}

// CanonicalMessage builds the string that is signed:
// timestamp_ms + method + path, with any query string stripped.
func CanonicalMessage(timestampMs int64, method, path string) string {
	path, _, _ = strings.Cut(path, "?")
	return strconv.FormatInt(timestampMs, 10) + method + path
}
