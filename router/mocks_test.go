// No mocks are tested by this file.
// It supplies some mock implementations to other unit tests,
// and is named "...test.go" so it is only compiled under `go test`.

package router

import (
	"net"
	"sync"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/weaveworks/ofpath/topology"
)

type packetOut struct {
	Dpid     topology.DPID
	BufferID uint32
	InPort   topology.PortNo
	Actions  []Action
	Payload  []byte
}

// mockChannel records everything sent to it. Sends to a dpid in
// failing return an error and are not recorded.
type mockChannel struct {
	sync.Mutex
	rules      []FlowRule
	packetOuts []packetOut
	failing    map[topology.DPID]bool
}

func newMockChannel() *mockChannel {
	return &mockChannel{failing: make(map[topology.DPID]bool)}
}

func (ch *mockChannel) SendFlowRule(dpid topology.DPID, priority uint16, match Match, actions []Action) error {
	ch.Lock()
	defer ch.Unlock()
	if ch.failing[dpid] {
		return errors.Errorf("connection to %s lost", dpid)
	}
	ch.rules = append(ch.rules, FlowRule{dpid, priority, match, actions})
	return nil
}

func (ch *mockChannel) SendPacketOut(dpid topology.DPID, bufferID uint32, inPort topology.PortNo, actions []Action, payload []byte) error {
	ch.Lock()
	defer ch.Unlock()
	if ch.failing[dpid] {
		return errors.Errorf("connection to %s lost", dpid)
	}
	ch.packetOuts = append(ch.packetOuts, packetOut{dpid, bufferID, inPort, actions, payload})
	return nil
}

// pathRules are the recorded rules above table-miss priority.
func (ch *mockChannel) pathRules() []FlowRule {
	ch.Lock()
	defer ch.Unlock()
	var rules []FlowRule
	for _, rule := range ch.rules {
		if rule.Priority > TableMissPriority {
			rules = append(rules, rule)
		}
	}
	return rules
}

func (ch *mockChannel) lastPacketOut() packetOut {
	ch.Lock()
	defer ch.Unlock()
	return ch.packetOuts[len(ch.packetOuts)-1]
}

func (ch *mockChannel) reset() {
	ch.Lock()
	defer ch.Unlock()
	ch.rules = nil
	ch.packetOuts = nil
}

type mockStore struct {
	snapshots []topology.Snapshot
}

func (s *mockStore) SaveTopology(snapshot topology.Snapshot) error {
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

const (
	dpA = topology.DPID(0xa)
	dpB = topology.DPID(0xb)
	dpC = topology.DPID(0xc)
	dpD = topology.DPID(0xd)
)

var (
	mac1 = mustMAC("00:00:00:00:00:01")
	mac2 = mustMAC("00:00:00:00:00:02")
	mac3 = mustMAC("00:00:00:00:00:03")
)

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func linkAdd(src topology.DPID, srcPort topology.PortNo, dst topology.DPID, dstPort topology.PortNo) LinkAdd {
	return LinkAdd{Src: topology.LinkEnd{Dpid: src, Port: srcPort}, Dst: topology.LinkEnd{Dpid: dst, Port: dstPort}}
}

func frame(t *testing.T, src, dst net.HardwareAddr) []byte {
	buf := gopacket.NewSerializeBuffer()
	eth := &layers.Ethernet{SrcMAC: src, DstMAC: dst, EthernetType: layers.EthernetTypeIPv4}
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, eth, gopacket.Payload([]byte("hello"))))
	return buf.Bytes()
}

func packetIn(t *testing.T, dpid topology.DPID, inPort topology.PortNo, src, dst net.HardwareAddr) PacketIn {
	return PacketIn{Dpid: dpid, InPort: inPort, BufferID: NoBuffer, Data: frame(t, src, dst)}
}

// A - B - C, with A:1-B:1 and B:2-C:1
func newLineController(t *testing.T) (*Controller, *mockChannel) {
	ch := newMockChannel()
	c := NewController(ch, Config{})
	for _, dpid := range []topology.DPID{dpA, dpB, dpC} {
		require.NoError(t, c.HandleEvent(SwitchEnter{Dpid: dpid}))
	}
	require.NoError(t, c.HandleEvent(linkAdd(dpA, 1, dpB, 1)))
	require.NoError(t, c.HandleEvent(linkAdd(dpB, 2, dpC, 1)))
	ch.reset()
	return c, ch
}
