// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StandardObserver implements observability for all components. Operations
// are logged as structured zap entries; matched text is never part of them.
type StandardObserver struct {
	level         ObservabilityLevel
	logger        *zap.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewLogger builds a JSON zap logger writing to writer. Debug entries are
// only emitted at ObservabilityDebug.
func NewLogger(level ObservabilityLevel, writer io.Writer) *zap.Logger {
	if level == ObservabilityOff || writer == nil {
		return zap.NewNop()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	minLevel := zapcore.InfoLevel
	if level == ObservabilityDebug {
		minLevel = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), minLevel)
	return zap.New(core)
}

// NewStandardObserver creates observability component. A nil logger disables output.
func NewStandardObserver(level ObservabilityLevel, logger *zap.Logger) *StandardObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandardObserver{
		level:  level,
		logger: logger,
	}
}

// Logger returns the underlying logger
func (o *StandardObserver) Logger() *zap.Logger {
	return o.logger
}

// Level returns the observer level
func (o *StandardObserver) Level() ObservabilityLevel {
	return o.level
}

// WithRequestID returns an observer whose entries carry requestID
func (o *StandardObserver) WithRequestID(requestID string) *StandardObserver {
	return &StandardObserver{
		level:         o.level,
		logger:        o.logger.With(zap.String("request_id", requestID)),
		DebugObserver: o.DebugObserver,
	}
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, target string) func(success bool, metadata map[string]interface{}) {
	finish := o.StartOperation(component, operation, target)
	return func(success bool, metadata map[string]interface{}) {
		finish(StandardObservabilityData{Success: success, Metadata: metadata})
	}
}

// StartOperation is StartTiming for callers that fill the typed fields
// (error, content length, match count). Component, operation, target and
// duration are set by the returned function.
func (o *StandardObserver) StartOperation(component, operation, target string) func(data StandardObservabilityData) {
	start := time.Now()

	return func(data StandardObservabilityData) {
		data.Component = component
		data.Operation = operation
		data.Target = target
		data.DurationMs = time.Since(start).Milliseconds()
		o.LogOperation(data)
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o.level == ObservabilityOff {
		return
	}

	fields := []zap.Field{
		zap.String("component", data.Component),
		zap.String("operation", data.Operation),
		zap.Int64("duration_ms", data.DurationMs),
		zap.Bool("success", data.Success),
	}
	if data.Target != "" {
		fields = append(fields, zap.String("target", data.Target))
	}
	if data.Error != "" {
		fields = append(fields, zap.String("error", data.Error))
	}
	if data.ContentLength > 0 {
		fields = append(fields, zap.Int("content_length", data.ContentLength))
	}
	if data.MatchCount > 0 {
		fields = append(fields, zap.Int("match_count", data.MatchCount))
	}
	if len(data.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", data.Metadata))
	}

	if data.Success {
		o.logger.Info("operation completed", fields...)
	} else {
		o.logger.Warn("operation failed", fields...)
	}
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation"`
	Target        string                 `json:"target,omitempty"`
	DurationMs    int64                  `json:"duration_ms,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	ContentLength int                    `json:"content_length,omitempty"`
	MatchCount    int                    `json:"match_count,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}
