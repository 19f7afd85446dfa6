package config

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging sends the standard logger to stdout and, when LOG_FILE is
// set, to a rotating file as well. The returned closer flushes the file.
func (c *Config) SetupLogging() io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if c.LogFile == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	rotating := &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	log.Printf("📝 Logging to %s", c.LogFile)
	return rotating
}
