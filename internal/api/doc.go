// Package api implements the venue REST client.
//
// Every authenticated call computes a fresh RSA-PSS signature immediately
// before transmission (see internal/auth). The client performs no retries
// and clamps each call with a short timeout; failure policy belongs to
// callers. Requests are paced through a shared rate limiter.
package api
