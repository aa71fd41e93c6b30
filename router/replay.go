package router

import (
	"github.com/weaveworks/ofpath/topology"
)

// SnapshotEvents turns a saved topology back into the events that
// built it: every switch first, then every link.
func SnapshotEvents(snapshot topology.Snapshot) []Event {
	events := make([]Event, 0, len(snapshot.Switches)+len(snapshot.Links))
	for _, sw := range snapshot.Switches {
		events = append(events, SwitchEnter{Dpid: sw.Dpid, Ports: sw.Ports})
	}
	for _, link := range snapshot.Links {
		events = append(events, LinkAdd{Src: link.Src, Dst: link.Dst})
	}
	return events
}
