// Package router demultiplexes inbound STOMP frames to per-subscription consumers.
//
// Data flow:
//
//	transport read loop -> Router.Dispatch -> Registry lookup -> Queue (one per subscription) -> Worker -> Handler
//
// Each subscription owns an unbounded Queue with exactly one producer (the Router) and
// one consumer (its Worker), so a slow handler never blocks the transport or other topics.
package router
