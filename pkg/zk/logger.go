package zk

import (
	szk "github.com/samuel/go-zookeeper/zk"
	log "github.com/sirupsen/logrus"
)

// DebugLogger routes samuel zk log messages to logrus at the debug level, tagged so they can
// be told apart from the collector's own output.
type DebugLogger struct{}

var _ szk.Logger = (*DebugLogger)(nil)

// Printf satisfies szk.Logger.
func (l *DebugLogger) Printf(format string, args ...interface{}) {
	log.WithField("source", "zk").Debugf(format, args...)
}
