package gologger

import (
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

const RootLoggerName = "graphauth"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// Component returns the logger for graphauth.<component>, falling back to
// logger and then to a nop logger.
func Component(provider glog.LoggerProvider, logger glog.Logger, component string) glog.Logger {
	name := RootLoggerName
	if component = strings.Trim(strings.TrimSpace(component), "."); component != "" {
		name += "." + component
	}
	_, resolved := Resolve(name, provider, logger)
	return glog.Ensure(resolved)
}
