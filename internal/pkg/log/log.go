// Package log add logging utilities.
package log

import (
	"strings"
	"time"

	"udptest/internal/pkg/message"

	"github.com/sirupsen/logrus"
)

// SetLogger sets the default logger's level and output format.
func SetLogger(level, format string) {
	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		customFormatter := new(logrus.TextFormatter)
		customFormatter.TimestampFormat = time.RFC3339
		customFormatter.FullTimestamp = true
		logrus.SetFormatter(customFormatter)
	}
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// MessageToFields describes a protocol message for structured logging.
func MessageToFields(msg message.Message) logrus.Fields {
	if msg == nil {
		return logrus.Fields{"kind": "none"}
	}
	fields := logrus.Fields{
		"kind": msg.Kind().String(),
	}
	switch m := msg.(type) {
	case message.Begin:
		fields["seq"] = m.Seq
	case message.Okay:
		fields["seq"] = m.Seq
	case message.Error:
		fields["seq"] = m.Seq
	case message.Check:
		fields["digest"] = m.Digest
	case message.Next:
		fields["digest"] = m.Digest
	case message.Reject:
		fields["reason"] = m.Reason
	}
	return fields
}
