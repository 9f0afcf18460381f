package trading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/intraday-client/internal/command"
	"github.com/rickgao/intraday-client/internal/connection"
	"github.com/rickgao/intraday-client/internal/router"
	"github.com/rickgao/intraday-client/internal/subscription"
)

// mockManager is a testify mock of connection.Manager. Frames passed to the
// handler installed with SetFrameHandler can be injected with deliver.
type mockManager struct {
	mock.Mock

	mu      sync.Mutex
	handler func(*frame.Frame)
	sent    []*frame.Frame
}

func (m *mockManager) Connect(ctx context.Context, token string, timeout time.Duration) error {
	return m.Called(ctx, token, timeout).Error(0)
}

func (m *mockManager) Send(f *frame.Frame) error {
	err := m.Called(f).Error(0)
	if err == nil {
		m.mu.Lock()
		m.sent = append(m.sent, f)
		m.mu.Unlock()
	}
	return err
}

func (m *mockManager) Disconnect() error {
	return m.Called().Error(0)
}

func (m *mockManager) State() connection.State {
	return m.Called().Get(0).(connection.State)
}

func (m *mockManager) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockManager) SetFrameHandler(h func(*frame.Frame)) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

func (m *mockManager) OnStateChange(fn func(connection.State)) {}

func (m *mockManager) Stats() connection.ManagerStats {
	return connection.ManagerStats{}
}

func (m *mockManager) deliver(f *frame.Frame) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	h(f)
}

func (m *mockManager) sentFrames() []*frame.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*frame.Frame(nil), m.sent...)
}

func connectedManager() *mockManager {
	m := &mockManager{}
	m.On("IsConnected").Return(true)
	m.On("Send", mock.Anything).Return(nil)
	return m
}

func messageFrame(id, body string) *frame.Frame {
	f := frame.New(frame.MESSAGE, frame.Subscription, id, frame.Destination, "/x")
	f.Body = []byte(body)
	return f
}

func TestService_SubscribeNotConnected(t *testing.T) {
	m := &mockManager{}
	m.On("IsConnected").Return(false)

	svc := NewService(Config{User: "alice"}, m, nil, nil)

	sub := subscription.New(subscription.Ticker, "v1", subscription.Streaming)
	id, err := svc.Subscribe(sub, func(router.Message) error { return nil })

	require.ErrorIs(t, err, connection.ErrNotConnected)
	assert.Empty(t, id)
	m.AssertNotCalled(t, "Send", mock.Anything)
	assert.Equal(t, 0, svc.Stats().Router.ActiveSubscriptions)
}

func TestService_SubscribeSendsFrame(t *testing.T) {
	tests := []struct {
		name string
		sub  subscription.Subscription
		want string
	}{
		{
			name: "streaming ticker",
			sub:  subscription.New(subscription.Ticker, "v1", subscription.Streaming),
			want: "/user/alice/v1/streaming/ticker",
		},
		{
			name: "gzipped local view",
			sub:  subscription.New(subscription.LocalView, "v1", subscription.Conflated, subscription.WithArea(3), subscription.WithGzip()),
			want: "/user/alice/v1/conflated/localview/3/gzip",
		},
		{
			name: "empty type delivery areas",
			sub:  subscription.New(subscription.DeliveryAreas, "v1", subscription.Empty),
			want: "/user/alice/v1/deliveryAreas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := connectedManager()
			svc := NewService(Config{User: "alice"}, m, nil, nil)

			id, err := svc.Subscribe(tt.sub, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.sub.ID, id)

			sent := m.sentFrames()
			require.Len(t, sent, 1)
			assert.Equal(t, frame.SUBSCRIBE, sent[0].Command)
			assert.Equal(t, tt.want, sent[0].Header.Get(frame.Destination))
			assert.Equal(t, id, sent[0].Header.Get(frame.Id))
		})
	}
}

func TestService_SubscribeGeneratesID(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	id, err := svc.Subscribe(subscription.Subscription{Topic: subscription.Ticker, Version: "v1"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestService_SubscribeInvalidTopic(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	_, err := svc.Subscribe(subscription.Subscription{ID: "x", Topic: subscription.Topic(99), Version: "v1"}, nil)
	require.ErrorIs(t, err, subscription.ErrInvalidTopic)
	m.AssertNotCalled(t, "Send", mock.Anything)
	assert.Equal(t, 0, svc.Stats().Router.ActiveSubscriptions)
}

func TestService_DuplicateSubscription(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	sub := subscription.New(subscription.Ticker, "v1", subscription.Streaming)
	_, err := svc.Subscribe(sub, nil)
	require.NoError(t, err)

	_, err = svc.Subscribe(sub, nil)
	require.ErrorIs(t, err, router.ErrDuplicateSubscription)
	assert.Len(t, m.sentFrames(), 1)
}

func TestService_SubscribeSendFailureRollsBack(t *testing.T) {
	sendErr := errors.New("write: broken pipe")
	m := &mockManager{}
	m.On("IsConnected").Return(true)
	m.On("Send", mock.Anything).Return(sendErr)

	svc := NewService(Config{User: "alice"}, m, nil, nil)
	sub := subscription.New(subscription.Ticker, "v1", subscription.Streaming)

	_, err := svc.Subscribe(sub, nil)
	assert.Same(t, sendErr, err)
	assert.Equal(t, 0, svc.Stats().Router.ActiveSubscriptions)
	assert.Empty(t, svc.Stats().Subscriptions)
}

func TestService_RoutesToHandlers(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	tickerGot := make(chan string, 10)
	contractsGot := make(chan string, 10)

	tickerID, err := svc.Subscribe(subscription.New(subscription.Ticker, "v1", subscription.Streaming), func(msg router.Message) error {
		tickerGot <- msg.Content
		return nil
	})
	require.NoError(t, err)
	contractsID, err := svc.Subscribe(subscription.New(subscription.Contracts, "v1", subscription.Streaming), func(msg router.Message) error {
		contractsGot <- msg.Content
		return nil
	})
	require.NoError(t, err)

	m.deliver(messageFrame(tickerID, "t1"))
	m.deliver(messageFrame(contractsID, "c1"))
	m.deliver(messageFrame(tickerID, "t2"))
	m.deliver(messageFrame("unknown", "lost"))

	for _, want := range []string{"t1", "t2"} {
		select {
		case got := <-tickerGot:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("ticker message %s not delivered", want)
		}
	}
	select {
	case got := <-contractsGot:
		assert.Equal(t, "c1", got)
	case <-time.After(2 * time.Second):
		t.Fatal("contracts message not delivered")
	}

	assert.Equal(t, int64(1), svc.Stats().Router.UnknownSubscription)
}

func TestService_SubscribeAllObserver(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	id, err := svc.Subscribe(subscription.New(subscription.Ticker, "v1", subscription.Streaming), nil)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	svc.SubscribeAll(func(msg router.Message) {
		mu.Lock()
		seen = append(seen, msg.Content)
		mu.Unlock()
	})

	m.deliver(messageFrame(id, "hello"))

	mu.Lock()
	assert.Equal(t, []string{"hello"}, seen)
	mu.Unlock()

	svc.UnsubscribeAll()
	m.deliver(messageFrame(id, "after"))

	mu.Lock()
	assert.Equal(t, []string{"hello"}, seen, "observer cleared by UnsubscribeAll")
	mu.Unlock()
}

func TestService_Unsubscribe(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	got := make(chan string, 10)
	id, err := svc.Subscribe(subscription.New(subscription.Ticker, "v1", subscription.Streaming), func(msg router.Message) error {
		got <- msg.Content
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(id))

	sent := m.sentFrames()
	require.Len(t, sent, 2)
	assert.Equal(t, frame.UNSUBSCRIBE, sent[1].Command)
	assert.Equal(t, id, sent[1].Header.Get(frame.Id))

	m.deliver(messageFrame(id, "late"))
	select {
	case c := <-got:
		t.Fatalf("handler received %q after unsubscribe", c)
	case <-time.After(50 * time.Millisecond):
	}

	assert.ErrorIs(t, svc.Unsubscribe(id), router.ErrSubscriptionNotFound)
}

func TestService_UnsubscribeAllSendsUnsubscribe(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	for _, topic := range []subscription.Topic{subscription.Ticker, subscription.Contracts, subscription.Configuration} {
		_, err := svc.Subscribe(subscription.New(topic, "v1", subscription.Streaming), nil)
		require.NoError(t, err)
	}

	svc.UnsubscribeAll()

	unsubscribes := 0
	for _, f := range m.sentFrames() {
		if f.Command == frame.UNSUBSCRIBE {
			unsubscribes++
		}
	}
	assert.Equal(t, 3, unsubscribes)
	assert.Equal(t, 0, svc.Stats().Router.ActiveSubscriptions)
}

func TestService_Connect(t *testing.T) {
	m := &mockManager{}
	m.On("Connect", mock.Anything, "token", 20*time.Second).Return(nil).Once()
	m.On("Connect", mock.Anything, "token", time.Second).Return(connection.ErrConnectionTimeout).Once()

	svc := NewService(Config{User: "alice"}, m, nil, nil)

	require.NoError(t, svc.Connect(context.Background(), "token", 0))
	assert.ErrorIs(t, svc.Connect(context.Background(), "token", time.Second), connection.ErrConnectionTimeout)

	m.AssertExpectations(t)
}

func TestService_Commands(t *testing.T) {
	m := connectedManager()
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	require.NoError(t, svc.SendLogout())
	require.NoError(t, svc.SendTokenRefresh("a", "b"))
	require.NoError(t, svc.SendTradeCancellation(command.TradeRecallRequest{TradeID: "T-1"}))

	sent := m.sentFrames()
	require.Len(t, sent, 3)
	assert.Equal(t, command.LogoutDestination, sent[0].Header.Get(frame.Destination))
	assert.Equal(t, command.TokenRefreshDestination, sent[1].Header.Get(frame.Destination))
	assert.Equal(t, command.TradeCancellationDestination, sent[2].Header.Get(frame.Destination))

	assert.ErrorIs(t, svc.SendOrderEntry(command.OrderEntryRequest{}), command.ErrInvalidCommand)
	assert.ErrorIs(t, svc.SendOrderModification(command.OrderModificationRequest{}), command.ErrInvalidCommand)
}

func TestService_Close(t *testing.T) {
	m := connectedManager()
	m.On("Disconnect").Return(nil)
	svc := NewService(Config{User: "alice"}, m, nil, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	id, err := svc.Subscribe(subscription.New(subscription.Ticker, "v1", subscription.Streaming), func(router.Message) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, err)

	m.deliver(messageFrame(id, "slow"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = svc.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.NoError(t, svc.Close(context.Background()))
	m.AssertCalled(t, "Disconnect")
}
