package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDrained = errors.New("no more messages")

// fakeReader hands out msgs in order, then reports errDrained.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return kafka.Message{}, err
	}
	if len(f.msgs) == 0 {
		return kafka.Message{}, errDrained
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	f.committed = append(f.committed, msgs...)
	f.mu.Unlock()
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func (f *fakeReader) committedOffsets(partition int) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for _, m := range f.committed {
		if m.Partition == partition {
			out = append(out, m.Offset)
		}
	}
	return out
}

func messages(partition int, offsets ...int64) []kafka.Message {
	out := make([]kafka.Message, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, kafka.Message{Topic: "payments", Partition: partition, Offset: o})
	}
	return out
}

// calls counts handler invocations per offset.
type calls struct {
	mu sync.Mutex
	n  map[int64]int
}

func (c *calls) inc(off int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = map[int64]int{}
	}
	c.n[off]++
	return c.n[off]
}

func (c *calls) get(off int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[off]
}

func TestConsumerRetriesInPlace(t *testing.T) {
	fr := &fakeReader{msgs: messages(0, 10, 11)}
	c := &Consumer{r: fr, workers: 4, Retries: 3, Backoff: time.Millisecond}
	var seen calls

	err := c.Start(context.Background(), func(_ context.Context, m kafka.Message) error {
		if seen.inc(m.Offset) <= 2 && m.Offset == 10 {
			return errors.New("store unavailable")
		}
		return nil
	})

	assert.ErrorIs(t, err, errDrained)
	assert.Equal(t, 3, seen.get(10))
	assert.Equal(t, []int64{10, 11}, fr.committedOffsets(0))
	assert.True(t, fr.closed)
}

func TestConsumerStopsWithoutCommittingPastFailure(t *testing.T) {
	fr := &fakeReader{msgs: messages(0, 10, 11, 12)}
	c := &Consumer{r: fr, workers: 4, Retries: 2, Backoff: time.Millisecond}
	var seen calls
	boom := errors.New("store unavailable")

	err := c.Start(context.Background(), func(_ context.Context, m kafka.Message) error {
		seen.inc(m.Offset)
		if m.Offset == 10 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, seen.get(10))
	assert.Zero(t, seen.get(11))
	assert.Zero(t, seen.get(12))
	assert.Empty(t, fr.committedOffsets(0))
}

func TestConsumerKeepsPartitionOrder(t *testing.T) {
	var msgs []kafka.Message
	for off := int64(0); off < 20; off++ {
		msgs = append(msgs, messages(int(off%3), off)...)
	}
	fr := &fakeReader{msgs: msgs}
	c := &Consumer{r: fr, workers: 2}

	err := c.Start(context.Background(), func(context.Context, kafka.Message) error { return nil })
	assert.ErrorIs(t, err, errDrained)

	for p := 0; p < 3; p++ {
		offs := fr.committedOffsets(p)
		assert.IsIncreasing(t, offs)
	}
	assert.Len(t, fr.committed, 20)
}

func TestConsumerQuietOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{r: &fakeReader{msgs: messages(0, 1)}, workers: 1}

	err := c.Start(ctx, func(context.Context, kafka.Message) error { return nil })
	assert.NoError(t, err)
}
