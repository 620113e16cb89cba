// Package probe observes the per-request lifecycle of the proxy:
// Received -> PathValidated -> (TokenMinted | NoToken) -> Forwarded ->
// ResponseRelayed, with Rejected and GatewayError as terminal states.
package probe

import "context"

// ProxyObserver creates request-scoped probes
type ProxyObserver interface {
	// RequestReceived is called when a proxy request arrives
	RequestReceived(ctx context.Context, method, path string) RequestProbe
}

// RequestProbe records the lifecycle events of a single proxied request
type RequestProbe interface {
	// PathRejected records a path-validation failure (terminal)
	PathRejected()

	// TokenMinted records a successful assertion mint
	TokenMinted()

	// NoToken records that the request proceeds without identity.
	// err is nil when there simply was no session, non-nil when minting
	// failed and degraded to the forward-without-identity fallback.
	NoToken(err error)

	// Forwarded records that the request was sent to the backend
	Forwarded()

	// ResponseRelayed records the backend status relayed to the client (terminal)
	ResponseRelayed(status int)

	// GatewayError records a transport failure reaching the backend (terminal)
	GatewayError()
}

// NopObserver discards all events
type NopObserver struct{}

// RequestReceived implements ProxyObserver
func (NopObserver) RequestReceived(ctx context.Context, method, path string) RequestProbe {
	return nopProbe{}
}

type nopProbe struct{}

func (nopProbe) PathRejected()              {}
func (nopProbe) TokenMinted()               {}
func (nopProbe) NoToken(error)              {}
func (nopProbe) Forwarded()                 {}
func (nopProbe) ResponseRelayed(status int) {}
func (nopProbe) GatewayError()              {}
