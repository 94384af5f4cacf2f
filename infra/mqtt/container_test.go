package mqtt

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/logger"
)

// TestIntegration verifies publishing and subscribing using a real Mosquitto broker.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	msgCh := make(chan payloads.FCMBattery, 1)
	cfg := Config{Broker: broker, ClientID: "sub", SubscribeAllAVR: true}
	sub, err := New(cfg, map[string]Handler{
		payloads.TopicFCMBattery: Handle(func(p payloads.FCMBattery) error {
			select {
			case msgCh <- p:
			default:
			}
			return nil
		}),
	}, WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("new subscriber: %v", err)
	}
	var connectErr error
	for i := 0; i < 5; i++ {
		if connectErr = sub.Start(ctx); connectErr == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if connectErr != nil {
		t.Fatalf("failed to connect: %v", connectErr)
	}
	defer sub.Close()

	pub, err := New(Config{Broker: broker, ClientID: "pub"}, nil, WithLogger(logger.NopLogger{}))
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := pub.Start(ctx); err != nil {
		t.Fatalf("failed to connect publisher: %v", err)
	}
	defer pub.Close()

	want := payloads.FCMBattery{Voltage: 16.1, SOC: 90}
	deadline := time.After(5 * time.Second)
	for {
		if err := pub.Send(payloads.TopicFCMBattery, want); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}
		select {
		case got := <-msgCh:
			if got != want {
				t.Fatalf("expected %+v got %+v", want, got)
			}
			return
		case <-deadline:
			t.Fatal("timeout waiting for message")
		case <-time.After(100 * time.Millisecond):
		}
	}
}
