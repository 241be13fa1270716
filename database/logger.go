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

package database

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/querydsl/utils"
)

const loggerName = "DATABASE"

var (
	globalLogger   Logger
	globalLoggerMu sync.Mutex
)

// Logger is a leveled logger taking alternating key/value fields.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// SetLogger replaces the package logger used by managers, hooks and
// fixture loaders created afterwards. A nil log restores the default.
func SetLogger(log Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = log
}

// GetLogger returns the package logger, creating the default one on first use.
func GetLogger() Logger {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefaultLogger(utils.NewLogger(loggerName))
	}
	return globalLogger
}

// DefaultLogger adapts a logrus logger to Logger.
type DefaultLogger struct {
	logger *logrus.Logger
}

func NewDefaultLogger(l *logrus.Logger) *DefaultLogger {
	return &DefaultLogger{logger: l}
}

func (l *DefaultLogger) log(level logrus.Level, msg string, kv []interface{}) {
	l.logger.WithFields(toFields(kv)).Log(level, msg)
}

func (l *DefaultLogger) Debug(msg string, kv ...interface{}) { l.log(logrus.DebugLevel, msg, kv) }
func (l *DefaultLogger) Info(msg string, kv ...interface{})  { l.log(logrus.InfoLevel, msg, kv) }
func (l *DefaultLogger) Warn(msg string, kv ...interface{})  { l.log(logrus.WarnLevel, msg, kv) }
func (l *DefaultLogger) Error(msg string, kv ...interface{}) { l.log(logrus.ErrorLevel, msg, kv) }

// toFields pairs up keys and values. A trailing key without a value is kept
// under "extra".
func toFields(kv []interface{}) logrus.Fields {
	if len(kv) == 0 {
		return nil
	}
	fields := make(logrus.Fields, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			fields["extra"] = kv[i]
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			key = "field"
		}
		fields[key] = kv[i+1]
	}
	return fields
}
