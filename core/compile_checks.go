package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ EnvelopeVerifier = (*HMACEnvelopeVerifier)(nil)
	_ CodeExchanger    = (*TokenExchangeClient)(nil)
	_ AppTokenSource   = (*TokenExchangeClient)(nil)
	_ GraphAuthService = (*Service)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
