// Package core holds the graph auth domain: signed envelope and legacy cookie
// verification, token and session key exchange, URL building and the Service
// that wires them with logging, metrics and error mapping. Transport
// implementations live outside core and plug in through GraphTransport.
package core
