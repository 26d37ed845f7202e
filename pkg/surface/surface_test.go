package surface

import (
	"testing"
	"time"

	"github.com/grovetools/linkpicker/pkg/action"
	"github.com/grovetools/linkpicker/pkg/bus"
	"github.com/grovetools/linkpicker/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCanonical plays the canonical side of a pipe by hand so tests control
// exactly what the surface receives.
type fakeCanonical struct {
	end  *bus.Endpoint
	recv chan bus.Envelope
}

func newFake(t *testing.T) (*fakeCanonical, *bus.Endpoint) {
	t.Helper()
	canonicalEnd, surfaceEnd := bus.NewPipe(0)
	f := &fakeCanonical{end: canonicalEnd, recv: make(chan bus.Envelope, 64)}
	canonicalEnd.OnReceive(bus.ToCanonical, func(env bus.Envelope) { f.recv <- env })
	t.Cleanup(func() { canonicalEnd.Close() })
	return f, surfaceEnd
}

func (f *fakeCanonical) next(t *testing.T) bus.Envelope {
	t.Helper()
	select {
	case env := <-f.recv:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for surface message")
		return bus.Envelope{}
	}
}

func (f *fakeCanonical) send(env bus.Envelope) {
	f.end.Send(bus.ToSurfaces, env)
}

func eventually(t *testing.T, s *Store, cond func(models.Tree) bool) {
	t.Helper()
	assert.Eventually(t, func() bool { return cond(s.State()) }, 2*time.Second, 5*time.Millisecond)
}

func TestAttachSubscribesAndSeeds(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)
	s.Attach(end)

	env := f.next(t)
	assert.Equal(t, action.Subscribe{}, env.Action)
	assert.Equal(t, s.ID(), env.Origin)
	assert.False(t, s.Synced())

	tree := models.NewTree()
	tree.Favourite = "firefox"
	f.send(bus.Envelope{Origin: s.ID(), Rev: 5, Action: action.Snapshot{Tree: tree}})

	eventually(t, s, func(tr models.Tree) bool { return tr.Favourite == "firefox" })
	assert.True(t, s.Synced())
}

func TestSnapshotForAnotherSurfaceIgnored(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)
	s.Attach(end)
	f.next(t)

	tree := models.NewTree()
	tree.Favourite = "other"
	f.send(bus.Envelope{Origin: "someone-else", Rev: 3, Action: action.Snapshot{Tree: tree}})
	f.send(bus.Envelope{Origin: s.ID(), Rev: 3, Action: action.Snapshot{Tree: models.NewTree()}})

	assert.Eventually(t, s.Synced, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "", s.State().Favourite)
}

func TestOptimisticThenRebroadcastAppliesOnce(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)
	s.Attach(end)
	f.next(t)
	f.send(bus.Envelope{Origin: s.ID(), Rev: 1, Action: action.Snapshot{Tree: models.NewTree()}})
	assert.Eventually(t, s.Synced, 2*time.Second, 5*time.Millisecond)

	toggle := action.TargetVisibilityToggled{TargetID: "X"}
	s.Dispatch(toggle)

	// Optimistic update is visible at once.
	assert.Equal(t, []string{"X"}, s.State().Hidden)
	assert.Equal(t, 1, s.Pending())

	sent := f.next(t)
	assert.Equal(t, uint64(1), sent.Seq)
	assert.Equal(t, toggle, sent.Action)

	// The canonical rebroadcast confirms it instead of toggling again.
	f.send(bus.Envelope{Origin: s.ID(), Seq: sent.Seq, Rev: 2, Action: toggle})
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"X"}, s.State().Hidden)

	// A duplicated rebroadcast changes nothing.
	f.send(bus.Envelope{Origin: s.ID(), Seq: sent.Seq, Rev: 2, Action: toggle})
	f.send(bus.Envelope{Origin: "peer", Seq: 1, Rev: 3, Action: action.FavouriteSet{TargetID: "Y"}})
	eventually(t, s, func(tr models.Tree) bool { return tr.Favourite == "Y" })
	assert.Equal(t, []string{"X"}, s.State().Hidden)
}

func TestPendingFoldsOverRemoteActions(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)
	s.Attach(end)
	f.next(t)
	f.send(bus.Envelope{Origin: s.ID(), Rev: 1, Action: action.Snapshot{Tree: models.NewTree()}})
	assert.Eventually(t, s.Synced, 2*time.Second, 5*time.Millisecond)

	s.Dispatch(action.FavouriteSet{TargetID: "mine"})
	f.next(t)

	// A remote action applied before ours lands under the pending one.
	f.send(bus.Envelope{Origin: "peer", Seq: 1, Rev: 2, Action: action.FavouriteSet{TargetID: "theirs"}})
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.lastRev == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "mine", s.State().Favourite)

	f.send(bus.Envelope{Origin: s.ID(), Seq: 1, Rev: 3, Action: action.FavouriteSet{TargetID: "mine"}})
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "mine", s.State().Favourite)
}

func TestGapTriggersResubscribe(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)
	s.Attach(end)
	f.next(t)
	f.send(bus.Envelope{Origin: s.ID(), Rev: 1, Action: action.Snapshot{Tree: models.NewTree()}})
	assert.Eventually(t, s.Synced, 2*time.Second, 5*time.Millisecond)

	f.send(bus.Envelope{Rev: 4, Action: action.URLReceived{URL: "https://skipped.test"}})

	env := f.next(t)
	assert.Equal(t, action.Subscribe{}, env.Action)
	assert.False(t, s.Synced())
	assert.Equal(t, "", s.State().URL)
}

func TestSnapshotAckDropsConfirmedPending(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)

	// Dispatched before any channel exists.
	s.Dispatch(action.HotkeyChanged{TargetID: "firefox", Key: "f"})
	s.Dispatch(action.TargetVisibilityToggled{TargetID: "chrome"})
	assert.Equal(t, 2, s.Pending())

	s.Attach(end)
	assert.Equal(t, action.Subscribe{}, f.next(t).Action)
	assert.Equal(t, uint64(1), f.next(t).Seq)
	assert.Equal(t, uint64(2), f.next(t).Seq)

	tree := models.NewTree()
	tree.Hotkeys = map[string]string{"firefox": "f"}
	f.send(bus.Envelope{Origin: s.ID(), Rev: 10, Action: action.Snapshot{Tree: tree, Ack: 1}})

	assert.Eventually(t, func() bool { return s.Pending() == 1 }, 2*time.Second, 5*time.Millisecond)
	state := s.State()
	assert.Equal(t, "f", state.Hotkeys["firefox"])
	assert.Equal(t, []string{"chrome"}, state.Hidden)
}

func TestControlActionsNotDispatched(t *testing.T) {
	s := New(nil)
	s.Dispatch(action.Subscribe{})
	s.Dispatch(nil)
	assert.Equal(t, 0, s.Pending())
}

func TestWatchAndClose(t *testing.T) {
	f, end := newFake(t)
	s := New(nil)
	s.Attach(end)
	f.next(t)

	ch, stop := s.Watch()
	defer stop()
	<-ch // initial value

	s.Dispatch(action.URLReceived{URL: "https://a.test"})
	select {
	case tree := <-ch:
		assert.Equal(t, "https://a.test", tree.URL)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}

	s.Close()
	s.Close()

	// Close sends Unsubscribe after the dispatched action.
	assert.Equal(t, action.TypeURLReceived, f.next(t).Action.Type())
	assert.Equal(t, action.Unsubscribe{}, f.next(t).Action)

	_, open := <-ch
	require.False(t, open)

	// Dispatch after close is ignored.
	s.Dispatch(action.URLReset{})
	assert.Equal(t, "https://a.test", s.State().URL)
}
