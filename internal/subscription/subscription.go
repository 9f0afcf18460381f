package subscription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Errors
var (
	ErrInvalidTopic = errors.New("invalid topic")
	ErrInvalidType  = errors.New("invalid subscription type")
	ErrMissingArea  = errors.New("delivery area required for topic")
)

// Topic identifies a gateway topic.
type Topic int

const (
	Ticker Topic = iota + 1
	DeliveryAreas
	OrderExecutionReport
	Configuration
	Contracts
	LocalView
	PrivateTrade
	PublicStatistics
	Capacities
	HeartbeatPing
)

var topicNames = map[Topic]string{
	Ticker:               "Ticker",
	DeliveryAreas:        "DeliveryAreas",
	OrderExecutionReport: "OrderExecutionReport",
	Configuration:        "Configuration",
	Contracts:            "Contracts",
	LocalView:            "LocalView",
	PrivateTrade:         "PrivateTrade",
	PublicStatistics:     "PublicStatistics",
	Capacities:           "Capacities",
	HeartbeatPing:        "HeartbeatPing",
}

func (t Topic) String() string {
	if name, ok := topicNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Topic(%d)", int(t))
}

// AreaScoped reports whether destinations for this topic carry a delivery area.
func (t Topic) AreaScoped() bool {
	switch t {
	case LocalView, Capacities, PublicStatistics:
		return true
	}
	return false
}

// Topics returns every known topic in declaration order.
func Topics() []Topic {
	return []Topic{
		Ticker, DeliveryAreas, OrderExecutionReport, Configuration, Contracts,
		LocalView, PrivateTrade, PublicStatistics, Capacities, HeartbeatPing,
	}
}

// ParseTopic resolves a topic by its name, case-sensitive.
func ParseTopic(name string) (Topic, error) {
	for t, n := range topicNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, name)
}

// Type selects between streaming, conflated and plain delivery.
type Type int

const (
	Empty Type = iota
	Streaming
	Conflated
)

func (t Type) String() string {
	switch t {
	case Empty:
		return "Empty"
	case Streaming:
		return "Streaming"
	case Conflated:
		return "Conflated"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a subscription type by name, case-insensitive.
// An empty name selects Empty.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "", "empty":
		return Empty, nil
	case "streaming":
		return Streaming, nil
	case "conflated":
		return Conflated, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, name)
}

// Subscription is one topic interest. ID correlates inbound MESSAGE frames.
type Subscription struct {
	ID      string
	Topic   Topic
	Version string
	Type    Type
	Area    int  // Delivery area; only used by area-scoped topics
	Gzip    bool // Ask the gateway for gzip-encoded payloads
}

// Option customizes a Subscription built with New.
type Option func(*Subscription)

// WithArea sets the delivery area qualifier.
func WithArea(area int) Option {
	return func(s *Subscription) {
		s.Area = area
	}
}

// WithGzip requests gzip-encoded payloads.
func WithGzip() Option {
	return func(s *Subscription) {
		s.Gzip = true
	}
}

// WithID overrides the generated id.
func WithID(id string) Option {
	return func(s *Subscription) {
		s.ID = id
	}
}

// New creates a Subscription with a freshly generated id.
func New(topic Topic, version string, typ Type, opts ...Option) Subscription {
	s := Subscription{
		ID:      uuid.NewString(),
		Topic:   topic,
		Version: version,
		Type:    typ,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
