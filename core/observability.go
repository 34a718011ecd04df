package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const metricPrefix = "graphauth."

type operation string

const (
	opAuthorizeURL        operation = "authorize_url"
	opDialogURL           operation = "dialog_url"
	opTokenURL            operation = "token_url"
	opVerifyEnvelope      operation = "verify_envelope"
	opParseLegacyCookie   operation = "parse_legacy_cookie"
	opResolveSession      operation = "resolve_session"
	opExchangeCode        operation = "exchange_code"
	opAppToken            operation = "app_token"
	opInvalidateAppToken  operation = "invalidate_app_token"
	opExchangeSessionKeys operation = "exchange_session_keys"
)

// NopMetricsRecorder discards every metric. It is the default recorder.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// tagFields are copied from log fields into metric tags. Values are low
// cardinality: never user ids, codes or tokens.
var tagFields = []string{"app_id", "source", "dialog_type", "found", "cached"}

// observeOperation emits one log line and the total/duration metrics for an
// operation. Callers must not put secrets or tokens in fields.
func (s *Service) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	op operation,
	err error,
	fields map[string]any,
) {
	if s == nil {
		return
	}
	name := string(op)
	if name == "" {
		name = "unknown"
	}
	elapsed := time.Since(startedAt)

	status := "success"
	logFields := cloneFields(fields)
	logFields["event_type"] = name
	logFields["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		status = "failure"
		logFields["error"] = err.Error()
		if textCode := errorTextCode(err); textCode != "" {
			logFields["text_code"] = textCode
		}
	}
	logFields["status"] = status

	if s.metricsRecorder != nil {
		s.metricsRecorder.IncCounter(ctx, metricPrefix+name+".total", 1, operationTags(name, status, logFields))
		s.metricsRecorder.ObserveHistogram(ctx, metricPrefix+name+".duration_ms", float64(elapsed.Milliseconds()), operationTags(name, status, logFields))
	}

	if err != nil {
		s.log(ctx, name+" failed", logFields, true)
		return
	}
	s.log(ctx, name+" succeeded", logFields, false)
}

// operationTags returns a fresh tag map per call since recorders may retain
// it.
func operationTags(name, status string, fields map[string]any) map[string]string {
	tags := map[string]string{"operation": name, "status": status}
	for _, key := range tagFields {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		if text := strings.TrimSpace(fmt.Sprint(value)); text != "" {
			tags[key] = text
		}
	}
	if textCode, ok := fields["text_code"].(string); ok && textCode != "" {
		tags["text_code"] = textCode
	}
	return tags
}

func (s *Service) log(ctx context.Context, message string, fields map[string]any, failed bool) {
	if s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	if failed {
		logger.Error(message, sortedFieldArgs(fields)...)
		return
	}
	logger.Info(message, sortedFieldArgs(fields)...)
}

func errorTextCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func sortedFieldArgs(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
