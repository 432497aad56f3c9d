package client

import "github.com/google/uuid"

// RequestLogger is the interface used by [Client] for logging attempts,
// failovers and errors. It has the same method set as resty.Logger and as
// the apex/log Interface, so either can be supplied via [WithRequestLogger].
//
// Signatures and secrets are never passed to the logger.
type RequestLogger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// NoopLogger is a [RequestLogger] that silently discards all log messages.
// It is the default logger used when no logger is provided to [New].
type NoopLogger struct{}

func (l *NoopLogger) Errorf(_ string, _ ...any) {}
func (l *NoopLogger) Warnf(_ string, _ ...any)  {}
func (l *NoopLogger) Debugf(_ string, _ ...any) {}

// requestLog tags the log lines of one Request call with a correlation id,
// so that the attempts against each host can be grouped. The id is not sent
// to the server.
type requestLog struct {
	logger RequestLogger
	id     string
	method string
	path   string
}

func newRequestLog(logger RequestLogger, method, path string) *requestLog {
	return &requestLog{logger: logger, id: uuid.NewString(), method: method, path: path}
}

func (l *requestLog) attempt(host string, index, total int) {
	l.logger.Debugf("goodhill [%s] %s %s via host %d/%d (%s)", l.id, l.method, l.path, index+1, total, host)
}

func (l *requestLog) unavailable(host string, status int, message string) {
	if message == "" {
		l.logger.Warnf("goodhill [%s] host %s unavailable (status %d), trying next host", l.id, host, status)
		return
	}

	l.logger.Warnf("goodhill [%s] host %s unavailable (status %d: %s), trying next host", l.id, host, status, message)
}

func (l *requestLog) failed(host string, err error) {
	l.logger.Warnf("goodhill [%s] host %s failed: %v", l.id, host, err)
}

func (l *requestLog) rejected(host string, err error) {
	l.logger.Errorf("goodhill [%s] %s %s rejected by %s: %v", l.id, l.method, l.path, host, err)
}

func (l *requestLog) exhausted(hosts int) {
	l.logger.Errorf("goodhill [%s] %s %s failed on all %d hosts", l.id, l.method, l.path, hosts)
}
