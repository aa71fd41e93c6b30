package router

import (
	"github.com/weaveworks/ofpath/topology"
)

// OpenFlow 1.3 reserved values the controller needs.
const (
	PortFlood      = topology.PortNo(0xfffffffb)
	PortController = topology.PortNo(0xfffffffd)

	// NoBuffer as a buffer reference means the packet travels in full
	// with the packet-in/packet-out.
	NoBuffer = uint32(0xffffffff)

	// ControllerNoBuffer asks the switch to send whole packets to the
	// controller instead of buffering them.
	ControllerNoBuffer = uint16(0xffff)

	TableMissPriority = 0
	PathPriority      = 1

	EthernetHeaderSize = 14
	ChannelSize        = 16
)
