package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/internal/candidates/models"
	"ballotbox/internal/platform/metrics"
)

type fakeConn struct {
	mu       sync.Mutex
	received []Message
	failWith error
	gate     chan struct{}
	closed   bool
}

func (c *fakeConn) Send(msg Message) error {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.received = append(c.received, msg)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message{}, c.received...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type staticSource struct {
	snap models.Snapshot
	err  error
}

func (s staticSource) List(context.Context) (*models.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := s.snap
	return &snap, nil
}

func snapshot(rev int64, names ...string) models.Snapshot {
	snap := models.Snapshot{Revision: rev, Candidates: []models.Candidate{}}
	for i, name := range names {
		snap.Candidates = append(snap.Candidates, models.Candidate{ID: int64(i + 1), Name: name})
	}
	return snap
}

func TestSubscribeDeliversCurrentRoster(t *testing.T) {
	hub := NewHub(staticSource{snap: snapshot(3, "Ana", "Bogdan")})
	conn := &fakeConn{}
	require.NoError(t, hub.Subscribe(context.Background(), conn))
	defer hub.Close()

	require.Eventually(t, func() bool { return len(conn.messages()) == 1 }, time.Second, 5*time.Millisecond)
	msg := conn.messages()[0]
	assert.Equal(t, MessageTypeCandidates, msg.Type)
	assert.Equal(t, int64(3), msg.Revision)
	assert.Len(t, msg.Candidates, 2)
}

func TestSubscribeFailsWhenRosterUnavailable(t *testing.T) {
	hub := NewHub(staticSource{err: errors.New("db down")})
	conn := &fakeConn{}
	require.Error(t, hub.Subscribe(context.Background(), conn))
	assert.Equal(t, 0, hub.Len())
	assert.True(t, conn.isClosed())
}

func TestPublishReachesEveryObserver(t *testing.T) {
	hub := NewHub(staticSource{snap: snapshot(0)})
	defer hub.Close()
	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		require.NoError(t, hub.Subscribe(context.Background(), c))
	}

	require.NoError(t, hub.Publish(context.Background(), snapshot(1, "Ana")))

	for _, c := range conns {
		require.Eventually(t, func() bool {
			msgs := c.messages()
			return len(msgs) > 0 && msgs[len(msgs)-1].Revision == 1
		}, time.Second, 5*time.Millisecond)
	}
}

func TestObserverNeverSeesOlderRevision(t *testing.T) {
	hub := NewHub(staticSource{snap: snapshot(0)})
	defer hub.Close()
	conn := &fakeConn{}
	require.NoError(t, hub.Subscribe(context.Background(), conn))

	revisions := []int64{1, 4, 2, 3, 6, 5, 7}
	for _, rev := range revisions {
		require.NoError(t, hub.Publish(context.Background(), snapshot(rev)))
	}

	require.Eventually(t, func() bool {
		msgs := conn.messages()
		return len(msgs) > 0 && msgs[len(msgs)-1].Revision == 7
	}, time.Second, 5*time.Millisecond)

	msgs := conn.messages()
	for i := 1; i < len(msgs); i++ {
		assert.Greater(t, msgs[i].Revision, msgs[i-1].Revision)
	}
}

func TestSlowObserverDoesNotBlockOthers(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	hub := NewHub(staticSource{snap: snapshot(0)}, WithMetrics(m))
	defer hub.Close()

	slow := &fakeConn{gate: make(chan struct{})}
	fast := &fakeConn{}
	require.NoError(t, hub.Subscribe(context.Background(), slow))
	require.NoError(t, hub.Subscribe(context.Background(), fast))

	for rev := int64(1); rev <= 5; rev++ {
		require.NoError(t, hub.Publish(context.Background(), snapshot(rev)))
	}

	require.Eventually(t, func() bool {
		msgs := fast.messages()
		return len(msgs) > 0 && msgs[len(msgs)-1].Revision == 5
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, slow.messages())

	close(slow.gate)
	require.Eventually(t, func() bool {
		msgs := slow.messages()
		return len(msgs) > 0 && msgs[len(msgs)-1].Revision == 5
	}, time.Second, 5*time.Millisecond)
	assert.Less(t, len(slow.messages()), 6)
	assert.Positive(t, testutil.ToFloat64(m.SnapshotsDropped.WithLabelValues("coalesced")))
}

func TestFailingObserverIsPruned(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	hub := NewHub(staticSource{snap: snapshot(0)}, WithMetrics(m))
	defer hub.Close()

	broken := &fakeConn{failWith: errors.New("broken pipe")}
	healthy := &fakeConn{}
	require.NoError(t, hub.Subscribe(context.Background(), broken))
	require.NoError(t, hub.Subscribe(context.Background(), healthy))

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Observers))

	require.NoError(t, hub.Publish(context.Background(), snapshot(1, "Ana")))
	require.Eventually(t, func() bool {
		msgs := healthy.messages()
		return len(msgs) > 0 && msgs[len(msgs)-1].Revision == 1
	}, time.Second, 5*time.Millisecond)
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	hub := NewHub(staticSource{snap: snapshot(0)})
	defer hub.Close()

	conns := make([]*fakeConn, 20)
	for i := range conns {
		conns[i] = &fakeConn{}
		require.NoError(t, hub.Subscribe(context.Background(), conns[i]))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for rev := int64(1); rev <= 50; rev++ {
			_ = hub.Publish(context.Background(), snapshot(rev))
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range conns[:10] {
			hub.Unsubscribe(c)
		}
	}()
	wg.Wait()

	assert.Equal(t, 10, hub.Len())
}
