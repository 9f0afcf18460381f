// Package connection implements the STOMP transport and the Connection Manager.
//
// The transport:
//   - Dials the gateway over WebSocket and speaks STOMP 1.2 frames
//   - Authenticates with the SSO token in the CONNECT frame
//   - Sends outgoing heartbeats at the negotiated interval
//   - Reports connected, closed and frame-received events
//
// The Connection Manager owns the single transport handle, tracks the
// connection state, and funnels every outbound frame through it.
package connection
