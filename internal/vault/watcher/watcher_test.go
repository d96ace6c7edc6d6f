package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingListener struct {
	name   string
	events *[]string
}

func (l *recordingListener) OnEntryInserted(entity string) {
	*l.events = append(*l.events, l.name+":inserted:"+entity)
}

func (l *recordingListener) OnEntryRemoved(entity string) {
	*l.events = append(*l.events, l.name+":removed:"+entity)
}

func (l *recordingListener) OnEntryChanged(oldEntity, newEntity string) {
	*l.events = append(*l.events, l.name+":changed:"+oldEntity+"->"+newEntity)
}

func TestContentWatcher_DeliversInSubscriptionOrder(t *testing.T) {
	w := New[string]()
	var events []string

	w.Subscribe(&recordingListener{name: "a", events: &events})
	w.Subscribe(&recordingListener{name: "b", events: &events})

	w.NotifyEntryInserted("x")
	w.NotifyEntryChanged("x", "y")
	w.NotifyEntryRemoved("y")

	assert.Equal(t, []string{
		"a:inserted:x", "b:inserted:x",
		"a:changed:x->y", "b:changed:x->y",
		"a:removed:y", "b:removed:y",
	}, events)
}

func TestContentWatcher_UnsubscribeStopsDelivery(t *testing.T) {
	w := New[string]()
	var events []string

	a := &recordingListener{name: "a", events: &events}
	b := &recordingListener{name: "b", events: &events}
	w.Subscribe(a)
	w.Subscribe(b)
	w.Unsubscribe(a)

	w.NotifyEntryInserted("x")

	assert.Equal(t, []string{"b:inserted:x"}, events)
}

func TestContentWatcher_NoListeners(t *testing.T) {
	w := New[string]()
	// must not panic
	w.NotifyEntryInserted("x")
	w.NotifyEntryRemoved("x")
	w.NotifyEntryChanged("x", "y")
}
