package atqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-mobile-broadband/ModemManager-sub009/cmderr"
)

// fakeWriter records every Write call it sees.
type fakeWriter struct {
	mu     sync.Mutex
	writes [][]byte
}

func (w *fakeWriter) Write(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	w.writes = append(w.writes, cp)
	return nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.writes)
}

func okProcessor(value interface{}) Processor {
	return func(body []string, terminal string) ProcessorResult {
		res, terminalHit := ClassifyTerminal(terminal)
		if !terminalHit {
			return ProcessorResult{Signal: Continue}
		}
		if res.Signal == TerminalOk {
			res.Value = value
		}
		return res
	}
}

func TestEnqueueFIFOOrder(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	q := New(w, 3, nil)

	f1 := q.Enqueue(&Command{Bytes: []byte("AT+A\r\n"), Timeout: time.Second, Processor: okProcessor("a")})
	f2 := q.Enqueue(&Command{Bytes: []byte("AT+B\r\n"), Timeout: time.Second, Processor: okProcessor("b")})

	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []byte("AT+A\r\n"), w.writes[0])

	assert.True(t, q.DeliverFrame("OK"))
	res1 := f1.Wait()
	require.NoError(t, res1.Err)
	assert.Equal(t, "a", res1.Value)

	require.Eventually(t, func() bool { return w.count() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []byte("AT+B\r\n"), w.writes[1])

	assert.True(t, q.DeliverFrame("OK"))
	res2 := f2.Wait()
	require.NoError(t, res2.Err)
	assert.Equal(t, "b", res2.Value)
}

func TestEnqueueCachedSkipsWrite(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	q := New(w, 3, nil)

	f1 := q.EnqueueCached(&Command{Bytes: []byte("AT+CGMI\r\n"), Timeout: time.Second, CacheKey: "cgmi", Processor: okProcessor("vendor")})
	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, time.Millisecond)
	require.True(t, q.DeliverFrame("OK"))
	res1 := f1.Wait()
	require.NoError(t, res1.Err)

	f2 := q.EnqueueCached(&Command{Bytes: []byte("AT+CGMI\r\n"), Timeout: time.Second, CacheKey: "cgmi", Processor: okProcessor("vendor")})
	res2 := f2.Wait()
	require.NoError(t, res2.Err)
	assert.Equal(t, "vendor", res2.Value)
	assert.Equal(t, 1, w.count(), "cached command must not be rewritten")
}

func TestCancelPendingWritesNothing(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	q := New(w, 3, nil)

	// Block the queue with a never-completing head so the second command
	// stays pending.
	blocked := q.Enqueue(&Command{Bytes: []byte("AT+BLOCK\r\n"), Timeout: time.Hour, Processor: okProcessor("x")})
	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, time.Millisecond)

	pending := q.Enqueue(&Command{Bytes: []byte("AT+PENDING\r\n"), Timeout: time.Second, Processor: okProcessor("y")})
	q.Cancel(pending)

	res := pending.Wait()
	assert.ErrorIs(t, res.Err, cmderr.ErrCancelled)
	assert.Equal(t, 1, w.count(), "a cancelled pending command must write zero bytes")

	require.True(t, q.DeliverFrame("OK"))
	_ = blocked.Wait()
}

func TestCancelHeadResolvesWaiterWithCancelled(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	q := New(w, 3, nil)

	head := q.Enqueue(&Command{Bytes: []byte("AT+HEAD\r\n"), Timeout: time.Second, Processor: okProcessor("x")})
	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, time.Millisecond)

	q.Cancel(head)

	// The late response still arrives and must be discarded, not delivered
	// as a successful value, but Wait must not hang forever.
	assert.True(t, q.DeliverFrame("OK"))

	res := head.Wait()
	assert.ErrorIs(t, res.Err, cmderr.ErrCancelled)
}

func TestTimeoutTripsOnFailedAfterThreshold(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	failed := make(chan struct{}, 1)
	q := New(w, 2, func() { failed <- struct{}{} })

	for i := 0; i < 2; i++ {
		f := q.Enqueue(&Command{Bytes: []byte("AT\r\n"), Timeout: 10 * time.Millisecond, Processor: okProcessor("z")})
		res := f.Wait()
		assert.Error(t, res.Err)
	}

	select {
	case <-failed:
	case <-time.After(time.Second):
		t.Fatal("onFailed was not invoked after consecutive timeouts reached the threshold")
	}
}

func TestSequenceAdvancesOnCmeUnsupported(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	q := New(w, 3, nil)

	first := &Command{Bytes: []byte("AT+FIRST\r\n"), Timeout: time.Second, Processor: okProcessor("first")}
	second := &Command{Bytes: []byte("AT+SECOND\r\n"), Timeout: time.Second, Processor: okProcessor("second")}

	f := q.EnqueueSequence([]*Command{first, second})
	require.Eventually(t, func() bool { return w.count() == 1 }, time.Second, time.Millisecond)

	assert.True(t, q.DeliverFrame("+CME ERROR: 4"))
	require.Eventually(t, func() bool { return w.count() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []byte("AT+SECOND\r\n"), w.writes[1])

	assert.True(t, q.DeliverFrame("OK"))
	res := f.Wait()
	require.NoError(t, res.Err)
	assert.Equal(t, "second", res.Value)
}

func TestEnqueueSequenceRejectsEmpty(t *testing.T) {
	t.Parallel()

	q := New(&fakeWriter{}, 3, nil)
	res := q.EnqueueSequence(nil).Wait()
	assert.Error(t, res.Err)
}
