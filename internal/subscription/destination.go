package subscription

import (
	"fmt"
	"strconv"
	"strings"
)

var topicSegments = map[Topic]string{
	Ticker:               "/ticker",
	DeliveryAreas:        "/deliveryAreas",
	OrderExecutionReport: "/orderExecutionReport",
	Configuration:        "/configuration",
	Contracts:            "/contracts",
	LocalView:            "/localview",
	PrivateTrade:         "/privateTrade",
	PublicStatistics:     "/publicStatistics",
	Capacities:           "/capacities",
	HeartbeatPing:        "/heartbeatping",
}

var typeSegments = map[Type]string{
	Empty:     "",
	Streaming: "/streaming",
	Conflated: "/conflated",
}

// BuildDestination returns the STOMP destination for s on behalf of user.
func BuildDestination(s Subscription, user string) (string, error) {
	topicSeg, ok := topicSegments[s.Topic]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidTopic, s.Topic)
	}
	typeSeg, ok := typeSegments[s.Type]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidType, s.Type)
	}

	var b strings.Builder
	b.WriteString("/user/")
	b.WriteString(user)
	b.WriteString("/")
	b.WriteString(s.Version)
	b.WriteString(typeSeg)
	b.WriteString(topicSeg)

	if s.Topic.AreaScoped() {
		if s.Area <= 0 {
			return "", fmt.Errorf("%w: %s", ErrMissingArea, s.Topic)
		}
		b.WriteString("/")
		b.WriteString(strconv.Itoa(s.Area))
	}

	if s.Gzip {
		b.WriteString("/gzip")
	}

	return b.String(), nil
}
