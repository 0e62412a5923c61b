package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenCmd_DeliversEvent(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Publish(ContentChangedEvent, "script.md")

	msg := ListenCmd(ctx, ch)()
	ev, ok := msg.(Event[string])
	require.True(t, ok, "expected Event[string], got %T", msg)
	assert.Equal(t, ContentChangedEvent, ev.Type)
	assert.Equal(t, "script.md", ev.Payload)
}

func TestListenCmd_NilOnCancelledContext(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	assert.Nil(t, ListenCmd(ctx, ch)())
}

func TestListenCmd_NilOnClosedChannel(t *testing.T) {
	ch := make(chan Event[string])
	close(ch)

	assert.Nil(t, ListenCmd(context.Background(), (<-chan Event[string])(ch))())
}

func TestContinuousListener_ReceivesAcrossListenCalls(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewContinuousListener(ctx, b)

	b.Publish(ReadingEvent, 1)
	b.Publish(ReadingEvent, 2)

	first := l.Listen()().(Event[int])
	second := l.Listen()().(Event[int])
	assert.Equal(t, 1, first.Payload)
	assert.Equal(t, 2, second.Payload)
}
