package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/internal/testbroker"
)

func TestModuleOverBroker(t *testing.T) {
	if testing.Short() {
		t.Skip("broker test")
	}
	broker := testbroker.Start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan payloads.PCMServo, 1)
	sub, err := New(Config{Broker: broker, ClientID: "sub"}, map[string]Handler{
		payloads.TopicPCMServoOpen: Handle(func(p payloads.PCMServo) error {
			select {
			case received <- p:
			default:
			}
			return nil
		}),
	}, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	require.NoError(t, sub.Start(ctx))
	defer sub.Close()

	pub, err := New(Config{Broker: broker, ClientID: "pub"}, nil, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	require.NoError(t, pub.Start(ctx))
	defer pub.Close()

	// The subscription is made from the connect callback, so keep sending
	// until it is in place.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		require.NoError(t, pub.Send(payloads.TopicPCMServoOpen, payloads.PCMServo{Servo: 2}))
		select {
		case got := <-received:
			assert.Equal(t, payloads.PCMServo{Servo: 2}, got)
			last, ok := pub.LastSent(payloads.TopicPCMServoOpen)
			require.True(t, ok)
			assert.Equal(t, payloads.PCMServo{Servo: 2}, last)
			return
		case <-ctx.Done():
			t.Fatal("timeout waiting for message")
		case <-ticker.C:
		}
	}
}
