package router

import (
	"net"

	"github.com/pkg/errors"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/topology"
)

// OnPacketIn learns where the sender is, installs a path towards the
// receiver if one is known, and then forwards the packet itself from
// the switch it came in on: to the receiver's learned port, or flooded
// when the receiver has not been seen on that switch. The packet is
// forwarded whether or not a path was installed.
func (c *Controller) OnPacketIn(ev PacketIn) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stats.PacketIns++

	if err := c.dec.DecodeLayers(ev.Data); err != nil {
		c.stats.DecodeErrors++
		return errors.Wrapf(err, "packet-in from %s port %d", ev.Dpid, ev.InPort)
	}
	srcMAC, dstMAC := c.dec.Addresses()

	c.macs.Learn(ev.Dpid, srcMAC, ev.InPort)

	outPort, found := c.macs.ResolvePort(ev.Dpid, dstMAC)
	if found {
		c.stats.Unicasts++
	} else {
		outPort = PortFlood
		c.stats.Floods++
	}
	actions := []Action{OutputToPort{Port: outPort}}

	// Group addresses are never learned, so there is no path to find
	if common.IsBroadcastOrMulticast(dstMAC) {
		c.stats.PathsNotFound++
	} else if path, found := c.paths.FirstPath(srcMAC, dstMAC); found {
		sent, err := c.installer.InstallPath(path, dstMAC)
		c.stats.FlowRulesSent += uint64(sent)
		if err != nil {
			c.stats.SendErrors++
		}
		c.stats.PathsInstalled++
		log.Debugf("[controller] %s -> %s via %s (%d rules)", srcMAC, dstMAC, path, sent)
	} else {
		c.stats.PathsNotFound++
	}

	if err := c.channel.SendPacketOut(ev.Dpid, ev.BufferID, ev.InPort, actions, ev.Data); err != nil {
		c.stats.SendErrors++
		log.Warnf("[controller] packet-out on %s failed: %v", ev.Dpid, err)
	}
	return nil
}

// Paths lists every simple path between the switches two MACs were
// last seen at. The first one is what a packet-in would install.
func (c *Controller) Paths(srcMAC, dstMAC net.HardwareAddr) []topology.Path {
	return c.paths.FindPaths(srcMAC, dstMAC)
}
