package ws

// Changefeed publishes coarse "table changed" events to subscribed
// clients. Clients react by refetching the named collection; no row
// diffs travel over the wire. Acceptable because collections are small
// (low thousands of rows).
type Changefeed struct {
	hub *Hub
}

func NewChangefeed(hub *Hub) *Changefeed {
	return &Changefeed{hub: hub}
}

func (f *Changefeed) Hub() *Hub {
	return f.hub
}

type changeEvent struct {
	Type  string `json:"type"`
	Table string `json:"table"`
}

// TableChanged notifies every connected client that a collection
// changed. Slow consumers silently miss events (non-blocking send);
// they resync on their next reconnect.
func (f *Changefeed) TableChanged(table string) {
	f.hub.BroadcastAll(changeEvent{Type: "change", Table: table})
}

// TablesChanged publishes one event per table.
func (f *Changefeed) TablesChanged(tables ...string) {
	for _, t := range tables {
		f.TableChanged(t)
	}
}
