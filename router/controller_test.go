package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/weaveworks/ofpath/topology"
)

func TestSwitchEnterInstallsTableMiss(t *testing.T) {
	ch := newMockChannel()
	store := &mockStore{}
	c := NewController(ch, Config{Store: store})

	ports := []topology.Port{{PortNo: 1, HwAddr: mac3, Name: "eth1"}}
	require.NoError(t, c.HandleEvent(SwitchEnter{Dpid: dpA, Ports: ports}))

	require.Len(t, ch.rules, 1)
	rule := ch.rules[0]
	require.Equal(t, dpA, rule.Dpid)
	require.Equal(t, uint16(TableMissPriority), rule.Priority)
	require.Equal(t, Match{}, rule.Match)
	require.Equal(t, []Action{OutputToController{MaxLen: ControllerNoBuffer}}, rule.Actions)

	require.True(t, c.Graph().HasSwitch(dpA))
	require.Len(t, store.snapshots, 1)
	require.Equal(t, ports, store.snapshots[0].Switches[0].Ports)

	// Redelivery re-sends the rule but changes nothing else
	require.NoError(t, c.HandleEvent(SwitchEnter{Dpid: dpA, Ports: ports}))
	require.Len(t, c.Graph().Switches(), 1)
	require.Equal(t, uint64(2), c.Stats().SwitchEnters)
}

func TestLinkAddUnknownSwitchDropped(t *testing.T) {
	ch := newMockChannel()
	store := &mockStore{}
	c := NewController(ch, Config{Store: store})
	require.NoError(t, c.HandleEvent(SwitchEnter{Dpid: dpA}))

	require.NoError(t, c.HandleEvent(linkAdd(dpA, 1, dpB, 1)))
	require.Empty(t, c.Graph().Neighbors(dpA))
	require.Equal(t, uint64(1), c.Stats().LinksDropped)
	require.Len(t, store.snapshots, 1, "dropped link is not persisted")

	// Not retried once dpB appears
	require.NoError(t, c.HandleEvent(SwitchEnter{Dpid: dpB}))
	require.Empty(t, c.Graph().Neighbors(dpA))

	require.NoError(t, c.HandleEvent(linkAdd(dpA, 1, dpB, 1)))
	require.Equal(t, []topology.DPID{dpB}, c.Graph().Neighbors(dpA))
	require.Equal(t, []topology.DPID{dpA}, c.Graph().Neighbors(dpB))
	require.Equal(t, uint64(1), c.Stats().LinksAdded)
}

func TestPacketInInstallsPath(t *testing.T) {
	c, ch := newLineController(t)

	// mac2 talks first from C port 7; mac1 is unknown so nothing is installed
	require.NoError(t, c.HandleEvent(packetIn(t, dpC, 7, mac2, mac1)))
	require.Empty(t, ch.pathRules())
	require.Equal(t, []Action{OutputToPort{Port: PortFlood}}, ch.lastPacketOut().Actions)

	ev := packetIn(t, dpA, 5, mac1, mac2)
	require.NoError(t, c.HandleEvent(ev))

	require.Equal(t, []FlowRule{
		{Dpid: dpB, Priority: PathPriority, Match: MatchInPortEthDst(1, mac2), Actions: []Action{OutputToPort{Port: 2}}},
		{Dpid: dpC, Priority: PathPriority, Match: MatchInPortEthDst(1, mac2), Actions: []Action{OutputToPort{Port: 7}}},
	}, ch.pathRules())

	// mac2 has never been seen on A, so the packet itself is flooded there
	out := ch.lastPacketOut()
	require.Equal(t, dpA, out.Dpid)
	require.Equal(t, NoBuffer, out.BufferID)
	require.Equal(t, topology.PortNo(5), out.InPort)
	require.Equal(t, []Action{OutputToPort{Port: PortFlood}}, out.Actions)
	require.Equal(t, ev.Data, out.Payload)

	port, found := c.Macs().ResolvePort(dpA, mac1)
	require.True(t, found)
	require.Equal(t, topology.PortNo(5), port)

	stats := c.Stats()
	require.Equal(t, uint64(2), stats.PacketIns)
	require.Equal(t, uint64(2), stats.Floods)
	require.Equal(t, uint64(1), stats.PathsInstalled)
	require.Equal(t, uint64(2), stats.FlowRulesSent)
}

func TestPacketInUnicastToLearnedPort(t *testing.T) {
	c, ch := newLineController(t)
	require.NoError(t, c.HandleEvent(packetIn(t, dpA, 5, mac1, mac2)))
	require.NoError(t, c.HandleEvent(packetIn(t, dpA, 6, mac2, mac1)))

	require.Equal(t, []Action{OutputToPort{Port: 5}}, ch.lastPacketOut().Actions)
	// Both hosts on A: the path is just A, which needs no rules
	require.Empty(t, ch.pathRules())
	require.Equal(t, uint64(1), c.Stats().Unicasts)
}

func TestPacketInUnknownDestinationFloods(t *testing.T) {
	c, ch := newLineController(t)
	require.NoError(t, c.HandleEvent(packetIn(t, dpB, 3, mac1, mac3)))

	require.Empty(t, ch.pathRules())
	require.Len(t, ch.packetOuts, 1)
	require.Equal(t, []Action{OutputToPort{Port: PortFlood}}, ch.packetOuts[0].Actions)
	require.Equal(t, uint64(1), c.Stats().PathsNotFound)
}

func TestPacketInDecodeError(t *testing.T) {
	c, ch := newLineController(t)
	err := c.HandleEvent(PacketIn{Dpid: dpA, InPort: 1, BufferID: NoBuffer, Data: []byte{1, 2, 3}})
	require.Error(t, err)
	require.Empty(t, ch.packetOuts)
	require.Empty(t, c.Macs().Locations())
	require.Equal(t, uint64(1), c.Stats().DecodeErrors)
}

func TestPacketInSendFailureContinues(t *testing.T) {
	c, ch := newLineController(t)
	require.NoError(t, c.HandleEvent(packetIn(t, dpC, 7, mac2, mac1)))
	ch.failing[dpB] = true

	require.NoError(t, c.HandleEvent(packetIn(t, dpA, 5, mac1, mac2)))
	rules := ch.pathRules()
	require.Len(t, rules, 1)
	require.Equal(t, dpC, rules[0].Dpid)
	require.Equal(t, dpA, ch.lastPacketOut().Dpid, "packet-out is sent regardless")
	require.Equal(t, uint64(1), c.Stats().SendErrors)
}

func TestPacketInMeshInstallsOneRulePerHop(t *testing.T) {
	ch := newMockChannel()
	c := NewController(ch, Config{})
	for _, dpid := range []topology.DPID{dpA, dpB, dpC, dpD} {
		require.NoError(t, c.HandleEvent(SwitchEnter{Dpid: dpid}))
	}
	// Square A-B-D-C-A
	require.NoError(t, c.HandleEvent(linkAdd(dpA, 1, dpB, 1)))
	require.NoError(t, c.HandleEvent(linkAdd(dpB, 2, dpD, 1)))
	require.NoError(t, c.HandleEvent(linkAdd(dpA, 2, dpC, 1)))
	require.NoError(t, c.HandleEvent(linkAdd(dpC, 2, dpD, 2)))
	require.NoError(t, c.HandleEvent(packetIn(t, dpD, 9, mac2, mac1)))
	require.NoError(t, c.HandleEvent(packetIn(t, dpA, 9, mac1, mac2)))

	paths := c.Paths(mac1, mac2)
	require.Len(t, paths, 2)
	rules := ch.pathRules()
	require.Len(t, rules, len(paths[0])-1)
	for i, rule := range rules {
		require.Equal(t, paths[0][i+1], rule.Dpid)
	}
}

func TestUnexpectedEvent(t *testing.T) {
	c := NewController(newMockChannel(), Config{})
	require.Error(t, c.HandleEvent(nil))
}

func TestControllerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := newMockChannel()
	c := NewController(ch, Config{MacMaxAge: time.Minute})
	c.Start()
	require.True(t, c.Submit(SwitchEnter{Dpid: dpA}))
	require.True(t, c.Submit(SwitchEnter{Dpid: dpB}))
	require.True(t, c.Submit(linkAdd(dpA, 1, dpB, 1)))

	require.Eventually(t, func() bool {
		return c.Stats().LinksAdded == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	require.False(t, c.Submit(SwitchEnter{Dpid: dpC}))
	require.Contains(t, c.Status(), dpA.String())
}
