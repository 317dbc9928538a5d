package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for NewFileAppender.
const (
	fileMaxSizeMB  = 16
	fileMaxBackups = 3
)

// NewFileAppender returns an appender writing console-formatted lines to path, rotating the
// file once it reaches 16MB and keeping three compressed backups. Close the returned closer
// once nothing logs through the appender any more.
func NewFileAppender(path string) (*ConsoleAppender, io.Closer) {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		Compress:   true,
	}
	return NewWriterAppender(file), file
}
