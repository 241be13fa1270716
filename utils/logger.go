/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const defaultTimestampFormat = "2006-01-02 15:04:05.000"

var (
	defaultLevel = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	jsonConsole  = strings.EqualFold(EnvDefaultString("CONSOLE_LOG_FORMAT", "text"), "json")

	loggersMu sync.RWMutex
	loggers   = map[string]*logrus.Logger{}
)

// ParseLogLevel parses a level name case-insensitively. Unknown names fall
// back to info.
func ParseLogLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SetLoggerLevel changes the level of a logger created by NewLogger. It
// reports false when no logger has that name.
func SetLoggerLevel(name string, level string) bool {
	loggersMu.RLock()
	l, ok := loggers[name]
	loggersMu.RUnlock()
	if ok {
		l.SetLevel(ParseLogLevel(level))
	}
	return ok
}

// NewLogger returns a named logger writing to stdout.
func NewLogger(name string) *logrus.Logger {
	return NewLoggerWithWriter(name, os.Stdout)
}

// NewLoggerWithWriter returns a named logger writing to w. The format is
// text unless CONSOLE_LOG_FORMAT=json; LOG_LEVEL sets the initial level.
func NewLoggerWithWriter(name string, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(defaultLevel)
	l.SetReportCaller(true)
	if jsonConsole {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name})
	} else {
		l.SetFormatter(&ConsoleFormatter{LoggerName: name, NameWidth: 10, Color: EnvDefaultBool("LOG_COLOR", true)})
	}

	loggersMu.Lock()
	loggers[name] = l
	loggersMu.Unlock()
	return l
}

var levelColors = map[logrus.Level]*color.Color{
	logrus.TraceLevel: color.New(color.FgBlue),
	logrus.DebugLevel: color.New(color.FgBlue),
	logrus.InfoLevel:  color.New(color.FgGreen),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgRed, color.Bold),
	logrus.PanicLevel: color.New(color.FgRed, color.Bold),
}

var (
	nameColor   = color.New(color.FgCyan)
	callerColor = color.New(color.Faint)
)

// ConsoleFormatter renders "ts LEVEL pid --- [name] file:line : msg k=v".
type ConsoleFormatter struct {
	LoggerName      string
	TimestampFormat string
	NameWidth       int
	Color           bool
}

func (f *ConsoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	name := fmt.Sprintf("%*s", f.NameWidth, truncate(f.LoggerName, f.NameWidth))
	caller := ""
	if entry.Caller != nil {
		caller = " " + filepath.Base(entry.Caller.File) + ":" + strconv.Itoa(entry.Caller.Line)
	}
	if f.Color {
		if c, ok := levelColors[entry.Level]; ok {
			level = c.Sprint(level)
		}
		name = nameColor.Sprint(name)
		caller = callerColor.Sprint(caller)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %-6d --- [%s]%s : %s",
		entry.Time.Format(timestampFormat(f.TimestampFormat)), level, os.Getpid(), name, caller, entry.Message)
	for _, k := range slices.Sorted(maps.Keys(entry.Data)) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// JSONLogFormatter renders one JSON object per entry.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

type jsonRecord struct {
	Time    string                 `json:"time"`
	Level   string                 `json:"level"`
	Model   string                 `json:"model"`
	Caller  string                 `json:"caller,omitempty"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := jsonRecord{
		Time:    entry.Time.Format(timestampFormat(f.TimestampFormat)),
		Level:   entry.Level.String(),
		Model:   f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = filepath.Base(entry.Caller.File) + ":" + strconv.Itoa(entry.Caller.Line)
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			rec.Fields[k] = v
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func timestampFormat(format string) string {
	if format == "" {
		return defaultTimestampFormat
	}
	return format
}

func truncate(s string, n int) string {
	if r := []rune(s); n > 0 && len(r) > n {
		return string(r[:n])
	}
	return s
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}
