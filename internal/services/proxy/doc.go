// Package proxy hosts the dreams proxy: a stateless HTTP boundary that keeps
// hosted-store credentials on the server and exposes a small list/save API.
package proxy
