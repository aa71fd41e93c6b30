package topology

import (
	"encoding/json"
)

func (g *Graph) MarshalJSON() ([]byte, error) {
	type neighborEntry struct {
		Dpid string
		Port PortNo
	}
	type switchEntry struct {
		Dpid      string
		Ports     []Port
		Neighbors []neighborEntry
	}
	var entries []switchEntry
	for _, sw := range g.Switches() {
		entry := switchEntry{Dpid: sw.Dpid.String(), Ports: sw.Ports}
		for _, neighbor := range g.Neighbors(sw.Dpid) {
			port, _ := g.Port(sw.Dpid, neighbor)
			entry.Neighbors = append(entry.Neighbors, neighborEntry{neighbor.String(), port})
		}
		entries = append(entries, entry)
	}
	return json.Marshal(entries)
}

func (cache *MacCache) MarshalJSON() ([]byte, error) {
	return json.Marshal(cache.Locations())
}

func (port Port) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		PortNo PortNo
		HwAddr string
		Name   string
	}{port.PortNo, port.HwAddr.String(), port.Name})
}
