package subscription

import (
	"errors"
	"regexp"
	"testing"
)

func TestBuildDestination(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		want string
	}{
		{
			name: "ticker streaming",
			sub:  Subscription{Topic: Ticker, Version: "v1", Type: Streaming},
			want: "/user/alice/v1/streaming/ticker",
		},
		{
			name: "localview with area and gzip",
			sub:  Subscription{Topic: LocalView, Version: "v1", Type: Streaming, Area: 2, Gzip: true},
			want: "/user/alice/v1/streaming/localview/2/gzip",
		},
		{
			name: "configuration empty type",
			sub:  Subscription{Topic: Configuration, Version: "v1", Type: Empty},
			want: "/user/alice/v1/configuration",
		},
		{
			name: "public statistics conflated",
			sub:  Subscription{Topic: PublicStatistics, Version: "v1", Type: Conflated, Area: 10},
			want: "/user/alice/v1/conflated/publicStatistics/10",
		},
		{
			name: "capacities gzip",
			sub:  Subscription{Topic: Capacities, Version: "v2", Type: Streaming, Area: 3, Gzip: true},
			want: "/user/alice/v2/streaming/capacities/3/gzip",
		},
		{
			name: "contracts gzip has no area",
			sub:  Subscription{Topic: Contracts, Version: "v1", Type: Streaming, Area: 7, Gzip: true},
			want: "/user/alice/v1/streaming/contracts/gzip",
		},
		{
			name: "heartbeat ignores area",
			sub:  Subscription{Topic: HeartbeatPing, Version: "v1", Type: Streaming, Area: 2},
			want: "/user/alice/v1/streaming/heartbeatping",
		},
		{
			name: "delivery areas",
			sub:  Subscription{Topic: DeliveryAreas, Version: "v1", Type: Streaming},
			want: "/user/alice/v1/streaming/deliveryAreas",
		},
		{
			name: "order execution report",
			sub:  Subscription{Topic: OrderExecutionReport, Version: "v1", Type: Streaming},
			want: "/user/alice/v1/streaming/orderExecutionReport",
		},
		{
			name: "private trade",
			sub:  Subscription{Topic: PrivateTrade, Version: "v1", Type: Streaming},
			want: "/user/alice/v1/streaming/privateTrade",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDestination(tt.sub, "alice")
			if err != nil {
				t.Fatalf("BuildDestination() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildDestination() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDestination_Grammar(t *testing.T) {
	grammar := regexp.MustCompile(`^/user/[^/]+/[^/]+(/streaming|/conflated)?/[A-Za-z]+(/[0-9]+)?(/gzip)?$`)

	for _, topic := range Topics() {
		for _, typ := range []Type{Empty, Streaming, Conflated} {
			for _, gzip := range []bool{false, true} {
				sub := Subscription{Topic: topic, Version: "v1", Type: typ, Area: 5, Gzip: gzip}
				got, err := BuildDestination(sub, "bob")
				if err != nil {
					t.Fatalf("%s/%s/gzip=%v: unexpected error %v", topic, typ, gzip, err)
				}
				if !grammar.MatchString(got) {
					t.Errorf("%s/%s/gzip=%v: %q does not match destination grammar", topic, typ, gzip, got)
				}

				hasArea := regexp.MustCompile(`/5(/gzip)?$`).MatchString(got)
				if hasArea != topic.AreaScoped() {
					t.Errorf("%s: area segment present = %v, want %v (%q)", topic, hasArea, topic.AreaScoped(), got)
				}
			}
		}
	}
}

func TestBuildDestination_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sub     Subscription
		wantErr error
	}{
		{"unknown topic", Subscription{Topic: Topic(99), Version: "v1"}, ErrInvalidTopic},
		{"zero topic", Subscription{Version: "v1"}, ErrInvalidTopic},
		{"unknown type", Subscription{Topic: Ticker, Version: "v1", Type: Type(42)}, ErrInvalidType},
		{"area scoped without area", Subscription{Topic: LocalView, Version: "v1", Type: Streaming}, ErrMissingArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDestination(tt.sub, "alice")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BuildDestination() error = %v, want %v", err, tt.wantErr)
			}
			if got != "" {
				t.Errorf("BuildDestination() = %q, want empty destination", got)
			}
		})
	}
}
