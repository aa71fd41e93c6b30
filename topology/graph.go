package topology

import (
	"bytes"
	"fmt"
	"net"
	"sort"
	"sync"
)

// DPID identifies a switch (datapath).
type DPID uint64

func (dpid DPID) String() string {
	return fmt.Sprintf("%016x", uint64(dpid))
}

type PortNo uint32

type Port struct {
	PortNo PortNo
	HwAddr net.HardwareAddr
	Name   string
}

type Switch struct {
	Dpid  DPID
	Ports []Port
}

type LinkEnd struct {
	Dpid DPID
	Port PortNo
}

func (end LinkEnd) String() string {
	return fmt.Sprintf("%s:%d", end.Dpid, end.Port)
}

// Link is a physical link between two switch ports. The graph keeps
// it as two directed entries.
type Link struct {
	Src LinkEnd
	Dst LinkEnd
}

func (link Link) String() string {
	return fmt.Sprintf("%s-%s", link.Src, link.Dst)
}

// Graph is the switch adjacency structure: for every switch, the
// local port facing each neighbour. It never shrinks.
type Graph struct {
	sync.RWMutex
	switches  map[DPID]*Switch
	adjacency map[DPID]map[DPID]PortNo
}

func NewGraph() *Graph {
	return &Graph{
		switches:  make(map[DPID]*Switch),
		adjacency: make(map[DPID]map[DPID]PortNo),
	}
}

// AddSwitch registers a switch, returning true if it was not known
// before. Neighbour entries of a known switch are left untouched; its
// port list is replaced.
func (g *Graph) AddSwitch(dpid DPID, ports []Port) bool {
	g.Lock()
	defer g.Unlock()
	sw, found := g.switches[dpid]
	if !found {
		sw = &Switch{Dpid: dpid}
		g.switches[dpid] = sw
		g.adjacency[dpid] = make(map[DPID]PortNo)
	}
	sw.Ports = append([]Port(nil), ports...)
	return !found
}

// AddLink records both directions of link. The link is dropped, and
// false returned, unless both ends are registered switches.
func (g *Graph) AddLink(link Link) bool {
	if link.Src.Dpid == link.Dst.Dpid {
		return false
	}
	g.Lock()
	defer g.Unlock()
	srcAdj, srcFound := g.adjacency[link.Src.Dpid]
	dstAdj, dstFound := g.adjacency[link.Dst.Dpid]
	if !srcFound || !dstFound {
		return false
	}
	srcAdj[link.Dst.Dpid] = link.Src.Port
	dstAdj[link.Src.Dpid] = link.Dst.Port
	return true
}

func (g *Graph) HasSwitch(dpid DPID) bool {
	g.RLock()
	defer g.RUnlock()
	_, found := g.switches[dpid]
	return found
}

// Neighbors returns the switches adjacent to dpid in ascending order.
func (g *Graph) Neighbors(dpid DPID) []DPID {
	g.RLock()
	defer g.RUnlock()
	return g.neighbors(dpid)
}

func (g *Graph) neighbors(dpid DPID) []DPID {
	adj := g.adjacency[dpid]
	neighbors := make([]DPID, 0, len(adj))
	for neighbor := range adj {
		neighbors = append(neighbors, neighbor)
	}
	sort.Sort(ListOfDPIDs(neighbors))
	return neighbors
}

// Port returns the port on from that faces to.
func (g *Graph) Port(from, to DPID) (PortNo, bool) {
	g.RLock()
	defer g.RUnlock()
	port, found := g.adjacency[from][to]
	return port, found
}

func (g *Graph) Switches() []Switch {
	g.RLock()
	defer g.RUnlock()
	switches := make([]Switch, 0, len(g.switches))
	for _, sw := range g.switches {
		switches = append(switches, Switch{Dpid: sw.Dpid, Ports: append([]Port(nil), sw.Ports...)})
	}
	sort.Slice(switches, func(i, j int) bool { return switches[i].Dpid < switches[j].Dpid })
	return switches
}

// Links returns every physical link once, with the lower dpid as the
// source end.
func (g *Graph) Links() []Link {
	g.RLock()
	defer g.RUnlock()
	var links []Link
	for _, src := range g.sortedDPIDs() {
		for _, dst := range g.neighbors(src) {
			if dst < src {
				continue
			}
			links = append(links, Link{
				Src: LinkEnd{Dpid: src, Port: g.adjacency[src][dst]},
				Dst: LinkEnd{Dpid: dst, Port: g.adjacency[dst][src]},
			})
		}
	}
	return links
}

func (g *Graph) sortedDPIDs() []DPID {
	dpids := make([]DPID, 0, len(g.adjacency))
	for dpid := range g.adjacency {
		dpids = append(dpids, dpid)
	}
	sort.Sort(ListOfDPIDs(dpids))
	return dpids
}

func (g *Graph) String() string {
	var buf bytes.Buffer
	g.RLock()
	defer g.RUnlock()
	for _, dpid := range g.sortedDPIDs() {
		fmt.Fprintf(&buf, "%s:", dpid)
		for _, neighbor := range g.neighbors(dpid) {
			fmt.Fprintf(&buf, " %s(port %d)", neighbor, g.adjacency[dpid][neighbor])
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

type ListOfDPIDs []DPID

func (lod ListOfDPIDs) Len() int           { return len(lod) }
func (lod ListOfDPIDs) Swap(i, j int)      { lod[i], lod[j] = lod[j], lod[i] }
func (lod ListOfDPIDs) Less(i, j int) bool { return lod[i] < lod[j] }
