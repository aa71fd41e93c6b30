package datapath

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"github.com/weaveworks/go-odp/odp"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/router"
	"github.com/weaveworks/ofpath/topology"
)

var log = common.Log

type datapath struct {
	name   string
	handle odp.DatapathHandle
	vports []odp.Vport
}

func (dp *datapath) vportIDs() []odp.VportID {
	ids := make([]odp.VportID, len(dp.vports))
	for i, vport := range dp.vports {
		ids[i] = vport.ID
	}
	return ids
}

// Channel is a router.ControlChannel onto kernel Open vSwitch
// datapaths. Every datapath is one switch, identified by the ifindex
// of its netdev, and its vports are the switch ports.
type Channel struct {
	// The lock guards the datapaths, and also synchronises use of
	// the dpif
	lock      sync.Mutex
	dpif      *odp.Dpif
	datapaths map[topology.DPID]*datapath
	consumers []odp.Cancelable
}

// Open looks up the named datapaths. They must already exist.
func Open(names []string) (*Channel, error) {
	dpif, err := odp.NewDpif()
	if err != nil {
		return nil, errors.Wrap(err, "opening ODP")
	}

	success := false
	defer func() {
		if !success {
			dpif.Close()
		}
	}()

	ch := &Channel{dpif: dpif, datapaths: make(map[topology.DPID]*datapath)}
	for _, name := range names {
		handle, err := dpif.LookupDatapath(name)
		if err != nil {
			return nil, errors.Wrapf(err, "looking up datapath %q", name)
		}
		dp := &datapath{name: name, handle: handle}
		if dp.vports, err = handle.EnumerateVports(); err != nil {
			return nil, errors.Wrapf(err, "listing vports of %q", name)
		}
		ch.datapaths[DPID(handle)] = dp
	}

	success = true
	return ch, nil
}

func DPID(handle odp.DatapathHandle) topology.DPID {
	return topology.DPID(uint32(handle.ID()))
}

func (ch *Channel) Close() error {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	for _, consumer := range ch.consumers {
		common.CheckWarn(consumer.Cancel())
	}
	ch.consumers = nil
	err := ch.dpif.Close()
	ch.dpif = nil
	return err
}

func (ch *Channel) lookup(dpid topology.DPID) (*datapath, error) {
	dp, found := ch.datapaths[dpid]
	if !found {
		return nil, errors.Errorf("no datapath for switch %s", dpid)
	}
	return dp, nil
}

func (ch *Channel) SendFlowRule(dpid topology.DPID, priority uint16, match router.Match, actions []router.Action) error {
	if isTableMiss(actions) {
		return nil
	}
	ch.lock.Lock()
	defer ch.lock.Unlock()
	dp, err := ch.lookup(dpid)
	if err != nil {
		return err
	}
	flow, err := odpFlowSpec(match, actions, dp.vportIDs())
	if err != nil {
		return err
	}
	log.Debugln("[datapath] creating flow", flow)
	// Flows are matched by their keys alone; replace any earlier
	// flow with the same keys.
	if err := dp.handle.DeleteFlow(flow.FlowKeys); err != nil && !odp.IsNoSuchFlowError(err) {
		return errors.Wrapf(err, "replacing flow on %s", dp.name)
	}
	return errors.Wrapf(dp.handle.CreateFlow(flow), "creating flow on %s", dp.name)
}

func (ch *Channel) SendPacketOut(dpid topology.DPID, bufferID uint32, inPort topology.PortNo, actions []router.Action, payload []byte) error {
	if bufferID != router.NoBuffer {
		return errors.Errorf("datapaths do not buffer packets (buffer %d)", bufferID)
	}
	ch.lock.Lock()
	defer ch.lock.Unlock()
	dp, err := ch.lookup(dpid)
	if err != nil {
		return err
	}
	odpActs, err := odpActions(actions, inPort, dp.vportIDs())
	if err != nil {
		return err
	}
	if len(odpActs) == 0 {
		return nil
	}
	return errors.Wrapf(dp.handle.Execute(payload, nil, odpActs), "executing packet on %s", dp.name)
}

// SwitchEvents re-reads the vports of every datapath and returns one
// SwitchEnter per datapath, in dpid order.
func (ch *Channel) SwitchEvents() ([]router.SwitchEnter, error) {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	var events []router.SwitchEnter
	for dpid, dp := range ch.datapaths {
		vports, err := dp.handle.EnumerateVports()
		if err != nil {
			return nil, errors.Wrapf(err, "listing vports of %q", dp.name)
		}
		dp.vports = vports
		events = append(events, router.SwitchEnter{Dpid: dpid, Ports: vportPorts(vports)})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Dpid < events[j].Dpid })
	return events, nil
}

func vportPorts(vports []odp.Vport) []topology.Port {
	ports := make([]topology.Port, 0, len(vports))
	for _, vport := range vports {
		port := topology.Port{PortNo: topology.PortNo(vport.ID), Name: vport.Spec.Name()}
		if link, err := netlink.LinkByName(port.Name); err == nil {
			port.HwAddr = link.Attrs().HardwareAddr
		} else {
			log.Debugf("[datapath] no hardware address for vport %s: %v", port.Name, err)
		}
		ports = append(ports, port)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i].PortNo < ports[j].PortNo })
	return ports
}

// ConsumePacketIns delivers every datapath miss to submit as a
// PacketIn. It returns once consumers are registered on all
// datapaths; Close stops them.
func (ch *Channel) ConsumePacketIns(submit func(router.Event) bool) error {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	for dpid, dp := range ch.datapaths {
		cancelable, err := dp.handle.ConsumeMisses(&missConsumer{dpid: dpid, name: dp.name, submit: submit})
		if err != nil {
			return errors.Wrapf(err, "consuming misses on %q", dp.name)
		}
		ch.consumers = append(ch.consumers, cancelable)
	}
	return nil
}

type missConsumer struct {
	dpid   topology.DPID
	name   string
	submit func(router.Event) bool
}

func (mc *missConsumer) Miss(packet []byte, flowKeys odp.FlowKeys) error {
	ev, err := missPacketIn(mc.dpid, packet, flowKeys)
	if err != nil {
		return err
	}
	mc.submit(ev)
	return nil
}

func (mc *missConsumer) Error(err error, stopped bool) {
	if stopped {
		log.Errorf("[datapath] stopped listening on %s: %v", mc.name, err)
		return
	}
	log.Warnf("[datapath] error while listening on %s: %v", mc.name, err)
}

func missPacketIn(dpid topology.DPID, packet []byte, flowKeys odp.FlowKeys) (router.PacketIn, error) {
	key, found := flowKeys[odp.OVS_KEY_ATTR_IN_PORT]
	if !found {
		return router.PacketIn{}, errors.Errorf("miss on %s without an in-port", dpid)
	}
	inPort, ok := key.(odp.InPortFlowKey)
	if !ok {
		return router.PacketIn{}, errors.Errorf("miss on %s with unexpected in-port key %s", dpid, key)
	}
	return router.PacketIn{
		Dpid:     dpid,
		InPort:   topology.PortNo(inPort.VportID()),
		BufferID: router.NoBuffer,
		Data:     append([]byte(nil), packet...),
	}, nil
}
