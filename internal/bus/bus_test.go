// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	b := New()
	b.Publish(NewChange(KindPlaylist, uuid.New()))
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestSubscriberReceivesPublishedChange(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	id := uuid.New()
	b.Publish(NewChange(KindDisplay, id))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c, err := sub.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindDisplay, c.Kind)
	assert.True(t, c.Contains(id))
}

func TestAllSubscribersReceive(t *testing.T) {
	b := New()
	first := b.Subscribe()
	second := b.Subscribe()
	defer first.Close()
	defer second.Close()

	b.Publish(NewChange(KindSchedule, uuid.New()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, sub := range []*Subscription{first, second} {
		c, err := sub.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, KindSchedule, c.Kind)
	}
}

func TestLaggedSubscriberGetsErrorOnce(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	// Overflow the buffer: bufferDepth messages fit, the rest drop.
	for i := 0; i < bufferDepth+3; i++ {
		b.Publish(NewChange(KindPlaylist, uuid.New()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := sub.Recv(ctx)
	assert.ErrorIs(t, err, ErrLagged)

	// The buffered messages are still deliverable after the lag notice.
	for i := 0; i < bufferDepth; i++ {
		c, err := sub.Recv(ctx)
		require.NoError(t, err)
		assert.Equal(t, KindPlaylist, c.Kind)
	}
}

func TestRecvHonorsContextCancellation(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sub.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClosedSubscriptionStopsReceiving(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	sub.Close()
	sub.Close() // idempotent

	assert.Equal(t, 0, b.SubscriberCount())

	_, err := sub.Recv(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	// Publishing after close must not panic.
	b.Publish(NewChange(KindDisplay, uuid.New()))
}

func TestChangeContains(t *testing.T) {
	id := uuid.New()
	c := NewChange(KindScheduleInput, id)
	assert.True(t, c.Contains(id))
	assert.False(t, c.Contains(uuid.New()))
}
