// Package inbound adapts net/http requests to session resolution: cookie
// collection and a middleware that places the resolved session on the
// request context.
package inbound
