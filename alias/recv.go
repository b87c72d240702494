package alias

import "errors"

// ErrAliasOutOfRange indicates a PUBLISH carried a Topic Alias outside
// [1, max] for the currently configured receive alias maximum.
var ErrAliasOutOfRange = errors.New("topic alias out of range")

// RecvTable is the bounded alias → topic table a receiver maintains. It
// is populated whenever an inbound PUBLISH carries both a non-empty
// topic and an alias, and consulted to resolve PUBLISHes that carry only
// an alias with an empty topic.
type RecvTable struct {
	max  uint16
	byID map[uint16]string
}

// NewRecvTable returns a disabled receive table; call Configure to set
// the locally-advertised Topic Alias Maximum.
func NewRecvTable() *RecvTable {
	return &RecvTable{byID: make(map[uint16]string)}
}

// Configure sets the maximum alias value this side will accept and
// clears any existing mappings.
func (t *RecvTable) Configure(max uint16) {
	t.max = max
	t.Clear()
}

// Set records topic under alias. It returns ErrAliasOutOfRange if alias
// is 0 or exceeds the configured maximum.
func (t *RecvTable) Set(alias uint16, topic string) error {
	if alias == 0 || alias > t.max {
		return ErrAliasOutOfRange
	}
	t.byID[alias] = topic
	return nil
}

// Resolve returns the topic previously mapped to alias, if any.
func (t *RecvTable) Resolve(alias uint16) (string, bool) {
	topic, ok := t.byID[alias]
	return topic, ok
}

// Clear discards all mappings without changing the configured max.
func (t *RecvTable) Clear() {
	t.byID = make(map[uint16]string)
}
