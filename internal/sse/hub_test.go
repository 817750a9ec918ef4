package sse

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedr891/metal-rates-service/internal/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func testEvent(rate float64) *entity.RateUpdateEvent {
	return &entity.RateUpdateEvent{
		MetalType:    entity.MetalGold,
		NewRate:      rate,
		UpdatedCount: 3,
		Timestamp:    time.Now(),
	}
}

func drainConnected(t *testing.T, c *Client) {
	t.Helper()

	select {
	case msg := <-c.outbound:
		assert.Equal(t, EventConnected, msg.Type)
	default:
		t.Fatal("expected connected ack to be queued")
	}
}

func TestHub_RegisterQueuesConnectedAck(t *testing.T) {
	h := NewHub(10, nopLogger{})

	client, err := h.Register()
	require.NoError(t, err)
	require.NotNil(t, client)

	drainConnected(t, client)
	assert.Equal(t, 1, h.Len())
}

func TestHub_BroadcastFanOut(t *testing.T) {
	h := NewHub(10, nopLogger{})

	clients := make([]*Client, 0, 3)
	for i := 0; i < 3; i++ {
		c, err := h.Register()
		require.NoError(t, err)
		drainConnected(t, c)
		clients = append(clients, c)
	}

	h.Broadcast(testEvent(6500))

	for _, c := range clients {
		select {
		case msg := <-c.outbound:
			assert.Equal(t, EventMetalPriceUpdate, msg.Type)
			event, ok := msg.Data.(*entity.RateUpdateEvent)
			require.True(t, ok)
			assert.Equal(t, 6500.0, event.NewRate)
		default:
			t.Fatal("expected broadcast to reach every subscriber")
		}
	}
}

func TestHub_UnregisteredClientPruned(t *testing.T) {
	h := NewHub(10, nopLogger{})

	alive, err := h.Register()
	require.NoError(t, err)
	drainConnected(t, alive)

	gone, err := h.Register()
	require.NoError(t, err)
	drainConnected(t, gone)

	h.Unregister(gone)
	assert.Equal(t, 1, h.Len())

	// Повторный Unregister безопасен
	h.Unregister(gone)

	h.Broadcast(testEvent(6500))

	select {
	case msg := <-alive.outbound:
		assert.Equal(t, EventMetalPriceUpdate, msg.Type)
	default:
		t.Fatal("live subscriber must still receive events")
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := NewHub(10, nopLogger{})

	slow, err := h.Register()
	require.NoError(t, err)
	// Подтверждение не вычитываем: буфер заполняется рассылками

	fast, err := h.Register()
	require.NoError(t, err)
	drainConnected(t, fast)

	for i := 0; i <= _outboundBuffer; i++ {
		h.Broadcast(testEvent(float64(6000 + i)))
		for len(fast.outbound) > 0 {
			<-fast.outbound
		}
	}

	assert.Equal(t, 1, h.Len())

	select {
	case <-slow.done:
	default:
		t.Fatal("dropped client must have its done channel closed")
	}
}

func TestHub_SubscriberLimit(t *testing.T) {
	h := NewHub(2, nopLogger{})

	_, err := h.Register()
	require.NoError(t, err)
	_, err = h.Register()
	require.NoError(t, err)

	c, err := h.Register()
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrHubFull)
	assert.Equal(t, 2, h.Len())
}

func TestHub_UnlimitedWhenMaxZero(t *testing.T) {
	h := NewHub(0, nopLogger{})

	for i := 0; i < 50; i++ {
		_, err := h.Register()
		require.NoError(t, err)
	}

	assert.Equal(t, 50, h.Len())
}

func TestHub_Shutdown(t *testing.T) {
	h := NewHub(10, nopLogger{})

	c1, err := h.Register()
	require.NoError(t, err)
	c2, err := h.Register()
	require.NoError(t, err)

	h.Shutdown()

	assert.Equal(t, 0, h.Len())
	for _, c := range []*Client{c1, c2} {
		select {
		case <-c.done:
		default:
			t.Fatal("shutdown must close every subscriber")
		}
	}

	_, err = h.Register()
	assert.Error(t, err)
}

func TestHub_ConcurrentAccess(t *testing.T) {
	h := NewHub(0, nopLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := h.Register()
			if err != nil {
				return
			}
			drainLoop(c)
			h.Unregister(c)
		}()
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(rate int) {
			defer wg.Done()
			h.Broadcast(testEvent(float64(rate)))
		}(6000 + i)
	}

	wg.Wait()
	assert.Equal(t, 0, h.Len())
}

func drainLoop(c *Client) {
	for {
		select {
		case <-c.outbound:
		default:
			return
		}
	}
}
