// Package alias implements the two bounded topic-alias tables a v5
// connection maintains: a send-side table used to replace outgoing
// PUBLISH topics with a short integer once the peer has seen them, and a
// receive-side table used to resolve incoming PUBLISHes that carry an
// alias instead of a topic.
package alias

import "container/list"

type sendEntry struct {
	topic string
	alias uint16
}

// SendTable is the bounded alias → topic table a sender maintains.
// Eviction is LRU: once every slot in [1, max] is assigned, mapping a new
// topic evicts the least-recently-used mapping and reuses its slot
// number. The table is inactive (Map always reports !ok) until Configure
// is called with a non-zero max, mirroring that it only activates once
// the peer advertises a Topic Alias Maximum > 0.
type SendTable struct {
	max      uint16
	nextFree uint16
	byTopic  map[string]*list.Element
	order    *list.List // front = most recently used
}

// NewSendTable returns a disabled send table; call Configure to activate it.
func NewSendTable() *SendTable {
	return &SendTable{order: list.New(), byTopic: make(map[string]*list.Element)}
}

// Configure sets the maximum alias value usable (the peer's Topic Alias
// Maximum) and clears any existing mappings.
func (t *SendTable) Configure(max uint16) {
	t.max = max
	t.Clear()
}

// Enabled reports whether the table accepts mappings.
func (t *SendTable) Enabled() bool {
	return t.max > 0
}

// Lookup reports the alias already mapped to topic, if any, marking it
// most-recently-used.
func (t *SendTable) Lookup(topic string) (uint16, bool) {
	el, ok := t.byTopic[topic]
	if !ok {
		return 0, false
	}
	t.order.MoveToFront(el)
	return el.Value.(*sendEntry).alias, true
}

// Map returns the alias for topic, creating a mapping (evicting the
// least-recently-used entry if the table is already full) when none
// exists. ok is false only when the table is disabled (max == 0).
func (t *SendTable) Map(topic string) (alias uint16, ok bool) {
	if t.max == 0 {
		return 0, false
	}
	if a, found := t.Lookup(topic); found {
		return a, true
	}

	var assigned uint16
	if uint16(len(t.byTopic)) < t.max {
		t.nextFree++
		assigned = t.nextFree
	} else {
		back := t.order.Back()
		evicted := back.Value.(*sendEntry)
		assigned = evicted.alias
		t.order.Remove(back)
		delete(t.byTopic, evicted.topic)
	}

	el := t.order.PushFront(&sendEntry{topic: topic, alias: assigned})
	t.byTopic[topic] = el
	return assigned, true
}

// Clear discards all mappings without changing the configured max.
func (t *SendTable) Clear() {
	t.nextFree = 0
	t.order.Init()
	t.byTopic = make(map[string]*list.Element)
}

// Len reports the number of active mappings.
func (t *SendTable) Len() int {
	return len(t.byTopic)
}
