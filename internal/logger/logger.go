package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log общий логгер процесса. До Init пишет в stderr с настройками logrus по умолчанию.
var Log = logrus.New()

// Options параметры логгера.
type Options struct {
	Level  string
	Text   bool
	Output io.Writer
}

// Init пересоздаёт Log. Неизвестный уровень превращается в info.
func Init(opts Options) {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stderr)
	}

	if opts.Text {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	}

	Log = l
	if err != nil && opts.Level != "" {
		Log.WithField("level", opts.Level).Warn("logger: неизвестный уровень, используется info")
	}
}
