package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestResolvePrecedence(t *testing.T) {
	direct := &capturingLogger{id: "logger"}
	provider := &capturingProvider{logger: &capturingLogger{id: "provider"}}

	cases := []struct {
		name     string
		provider glog.LoggerProvider
		logger   glog.Logger
		want     string
	}{
		{name: "provider wins", provider: provider, logger: direct, want: "provider"},
		{name: "logger without provider", logger: direct, want: "logger"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolvedProvider, resolved := Resolve(RootLoggerName, tc.provider, tc.logger)
			got, ok := resolved.(*capturingLogger)
			if !ok || got.id != tc.want {
				t.Fatalf("expected %s logger, got %#v", tc.want, resolved)
			}
			if resolvedProvider == nil {
				t.Fatalf("expected a provider alongside the logger")
			}
		})
	}

	if _, resolved := Resolve(RootLoggerName, nil, nil); resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestComponentNamesLoggerUnderRoot(t *testing.T) {
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	logger := Component(provider, nil, " .cli. ")
	logger.Info("hello", "k", "v")

	if provider.lastName != "graphauth.cli" {
		t.Fatalf("expected graphauth.cli logger name, got %q", provider.lastName)
	}
	captured := providerLogger.lastInfo
	if captured.msg != "hello" {
		t.Fatalf("expected captured message, got %q", captured.msg)
	}
	if captured.args[0] != "k" || captured.args[1] != "v" {
		t.Fatalf("expected captured args, got %#v", captured.args)
	}

	if Component(nil, nil, "") == nil {
		t.Fatalf("expected nop fallback")
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger   *capturingLogger
	lastName string
}

func (p *capturingProvider) GetLogger(name string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	p.lastName = name
	return p.logger
}

type infoCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id       string
	lastInfo infoCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(string, ...any) {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Info(msg string, args ...any) {
	l.lastInfo = infoCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
