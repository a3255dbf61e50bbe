package view

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestManager_BroadcastToClients(t *testing.T) {
	m := NewManager(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	client := m.Connect()
	defer m.Disconnect(client.ID)
	require.Equal(t, 1, m.ClientCount())

	proj := NewProjector(m)
	proj.InsertRow(-1, 7)

	select {
	case event := <-client.EventChan:
		assert.Equal(t, EventRowInserted, event.Type)
		assert.Equal(t, 7, event.Index)
		assert.Equal(t, -1, event.Position)
		assert.NotEmpty(t, event.ID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestManager_DisconnectClosesChannel(t *testing.T) {
	m := NewManager(testLogger())

	client := m.Connect()
	m.Disconnect(client.ID)

	_, open := <-client.EventChan
	assert.False(t, open)
	assert.Equal(t, 0, m.ClientCount())

	// Double disconnect is a no-op.
	m.Disconnect(client.ID)
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := NewManager(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	cancel()
	require.NoError(t, m.Shutdown(shutdownCtx))

	// Must not panic on the closed events channel.
	m.Emit(NewHeartbeatEvent())
}

func TestProjector_EventShapes(t *testing.T) {
	m := NewManager(testLogger())
	client := m.Connect()
	defer m.Disconnect(client.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	proj := NewProjector(m)
	proj.SetGroup(3, 9)
	proj.SetCut(4, true)

	got := make(map[EventType]Event)
	for len(got) < 2 {
		select {
		case event := <-client.EventChan:
			got[event.Type] = event
		case <-time.After(time.Second):
			t.Fatal("timeout collecting events")
		}
	}

	assert.Equal(t, 9, got[EventGroupChanged].GroupID)
	assert.True(t, got[EventRowCut].Cut)
	assert.Equal(t, 4, got[EventRowCut].Index)
}
