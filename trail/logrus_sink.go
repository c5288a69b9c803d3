package trail

import (
	"github.com/hello-pionex/sentinel-httpclient/tinyutil"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "trail")

func init() {
	logrus.SetFormatter(&tinyutil.TextFormatter{})
}

// LogrusSink is the "protocol" verbosity sink: structured fields only,
// never raw bodies, following the pervasive
// logrus.WithFields(...).Infoln/Errorln idiom used elsewhere in this
// module (kafkautils/topicwriter's per-partition stat logging).
type LogrusSink struct{}

func NewLogrusSink() *LogrusSink { return &LogrusSink{} }

func (s *LogrusSink) Emit(ev Event) {
	fields := logrus.Fields{
		"trail":  ev.Trail,
		"target": ev.Target,
	}

	if ev.Correlation != "" {
		fields["correlation"] = ev.Correlation
	}
	if ev.Method != "" {
		fields["method"] = ev.Method
	}
	if ev.Path != "" {
		fields["path"] = ev.Path
	}
	if ev.StatusCode != 0 {
		fields["status"] = ev.StatusCode
	}
	if ev.ErrorKind != "" {
		fields["errorKind"] = ev.ErrorKind
	}
	if ev.Reason != "" {
		fields["reason"] = ev.Reason
	}

	entry := log.WithFields(fields)

	switch ev.Kind {
	case KindCurlError, KindTimeout:
		entry.Warnln(string(ev.Kind))
	case KindAbort:
		entry.Errorln(string(ev.Kind))
	default:
		entry.Infoln(string(ev.Kind))
	}
}
