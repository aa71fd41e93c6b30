package router

import (
	"github.com/weaveworks/ofpath/topology"
)

// ControlChannel frames and transmits messages to switches. Sends are
// fire and forget: a nil error means the message was handed over, not
// that the switch acted on it.
type ControlChannel interface {
	SendFlowRule(dpid topology.DPID, priority uint16, match Match, actions []Action) error
	SendPacketOut(dpid topology.DPID, bufferID uint32, inPort topology.PortNo, actions []Action, payload []byte) error
}

// TopologyStore persists the switch topology across restarts.
type TopologyStore interface {
	SaveTopology(topology.Snapshot) error
}

// Event is one of SwitchEnter, LinkAdd or PacketIn.
type Event interface {
	isEvent()
}

// SwitchEnter is delivered when a switch joins the network.
type SwitchEnter struct {
	Dpid  topology.DPID
	Ports []topology.Port
}

// LinkAdd is delivered when topology discovery finds a new
// inter-switch link. Both ends are identified by switch.
type LinkAdd struct {
	Src topology.LinkEnd
	Dst topology.LinkEnd
}

func (ev LinkAdd) Link() topology.Link {
	return topology.Link{Src: ev.Src, Dst: ev.Dst}
}

// PacketIn is delivered when a switch hands an unmatched packet to the
// controller.
type PacketIn struct {
	Dpid     topology.DPID
	InPort   topology.PortNo
	BufferID uint32
	Data     []byte
}

func (SwitchEnter) isEvent() {}
func (LinkAdd) isEvent()     {}
func (PacketIn) isEvent()    {}
