// Package model defines payload rows carried in subscription messages.
//
// Conventions:
//   - Field names follow the wire JSON exactly, including upstream typos
//   - Timestamps: time.Time parsed from RFC 3339
//   - Rows arrive as a JSON array, one message may carry many rows
package model
