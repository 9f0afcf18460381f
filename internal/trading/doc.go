// Package trading is the caller-facing client. It ties the connection,
// subscription routing and command sending together behind one Service.
package trading
