package probe

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// loggingObserver creates request-scoped logging probes
type loggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates an observer that logs proxy lifecycle events
// with structured fields. Backend URLs and request payloads are never logged.
func NewLoggingObserver(logger *logrus.Logger) ProxyObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &loggingObserver{logger: logger}
}

func (o *loggingObserver) RequestReceived(ctx context.Context, method, path string) RequestProbe {
	entry := o.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"method":     method,
		"path":       path,
	})
	entry.Debug("proxy request received")
	return &loggingProbe{entry: entry}
}

// loggingProbe logs events for a single proxied request
type loggingProbe struct {
	entry *logrus.Entry
}

func (p *loggingProbe) PathRejected() {
	p.entry.Warn("proxy path rejected")
}

func (p *loggingProbe) TokenMinted() {
	p.entry.Debug("bearer assertion minted")
}

func (p *loggingProbe) NoToken(err error) {
	if err == nil {
		p.entry.Debug("no authenticated session, forwarding without identity")
		return
	}
	p.entry.WithError(err).Warn("token minting failed, forwarding without identity")
}

func (p *loggingProbe) Forwarded() {
	p.entry.Debug("request forwarded to backend")
}

func (p *loggingProbe) ResponseRelayed(status int) {
	p.entry.WithField("status", status).Debug("backend response relayed")
}

func (p *loggingProbe) GatewayError() {
	p.entry.Error("transport failure reaching backend")
}
