package router

import (
	"time"

	"github.com/weaveworks/ofpath/topology"
)

type Status struct {
	Switches []SwitchStatus
	Links    []LinkStatus
	MACs     []MACStatus
	Stats    Stats
}

type SwitchStatus struct {
	Dpid  string
	Ports []PortStatus
}

type PortStatus struct {
	PortNo topology.PortNo
	HwAddr string
	Name   string
}

type LinkStatus struct {
	Src, Dst string
}

type MACStatus struct {
	Mac      string
	Dpid     string
	Port     topology.PortNo
	LastSeen time.Time
}

func NewStatus(c *Controller) *Status {
	return &Status{
		Switches: NewSwitchStatusSlice(c.graph),
		Links:    NewLinkStatusSlice(c.graph),
		MACs:     NewMACStatusSlice(c.macs),
		Stats:    c.Stats(),
	}
}

func NewSwitchStatusSlice(graph *topology.Graph) []SwitchStatus {
	var slice []SwitchStatus
	for _, sw := range graph.Switches() {
		status := SwitchStatus{Dpid: sw.Dpid.String()}
		for _, port := range sw.Ports {
			status.Ports = append(status.Ports, PortStatus{port.PortNo, port.HwAddr.String(), port.Name})
		}
		slice = append(slice, status)
	}
	return slice
}

func NewLinkStatusSlice(graph *topology.Graph) []LinkStatus {
	var slice []LinkStatus
	for _, link := range graph.Links() {
		slice = append(slice, LinkStatus{link.Src.String(), link.Dst.String()})
	}
	return slice
}

func NewMACStatusSlice(cache *topology.MacCache) []MACStatus {
	var slice []MACStatus
	for _, loc := range cache.Locations() {
		slice = append(slice, MACStatus{loc.Mac, loc.Dpid.String(), loc.Port, loc.LastSeen})
	}
	return slice
}
