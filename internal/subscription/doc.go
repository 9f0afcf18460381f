// Package subscription describes topic interests and maps them to STOMP destinations.
//
// Destination grammar:
//
//	/user/{user}/{version}{typeSegment}{topicSegment}[/{area}][/gzip]
//
// Area-scoped topics (localview, capacities, publicStatistics) require a delivery area.
package subscription
