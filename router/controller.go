package router

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/topology"
)

var log = common.Log

type Config struct {
	// MacMaxAge evicts learned MACs not seen for this long. Zero keeps
	// them for the lifetime of the controller.
	MacMaxAge time.Duration
	// Store, if set, receives a topology snapshot after every change.
	Store TopologyStore
}

// Stats counts what the controller has done since it was created.
type Stats struct {
	SwitchEnters   uint64
	LinksAdded     uint64
	LinksDropped   uint64
	PacketIns      uint64
	DecodeErrors   uint64
	Unicasts       uint64
	Floods         uint64
	PathsInstalled uint64
	PathsNotFound  uint64
	FlowRulesSent  uint64
	SendErrors     uint64
}

// Controller owns the topology and learning state and reacts to
// switch, link and packet events. Events are processed one at a time,
// to completion, whether they arrive through Submit or through direct
// calls to the On* handlers.
type Controller struct {
	channel   ControlChannel
	store     TopologyStore
	graph     *topology.Graph
	macs      *topology.MacCache
	paths     *topology.PathFinder
	installer *FlowInstaller

	// lock serialises event handling, and guards dec and stats
	lock  sync.Mutex
	dec   *EthernetDecoder
	stats Stats

	events   chan Event
	quit     chan struct{}
	finished chan struct{}
}

func NewController(channel ControlChannel, config Config) *Controller {
	graph := topology.NewGraph()
	macs := topology.NewMacCache(config.MacMaxAge, func(mac net.HardwareAddr, dpid topology.DPID) {
		log.Debugf("[controller] expired %s at %s", mac, dpid)
	})
	return &Controller{
		channel:   channel,
		store:     config.Store,
		graph:     graph,
		macs:      macs,
		paths:     topology.NewPathFinder(graph, macs),
		installer: NewFlowInstaller(channel, graph, macs),
		dec:       NewEthernetDecoder(),
		events:    make(chan Event, ChannelSize),
		quit:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
}

func (c *Controller) Graph() *topology.Graph { return c.graph }

func (c *Controller) Macs() *topology.MacCache { return c.macs }

// ACTOR client API

// Start runs the event loop. Events passed to Submit are handled on
// it in arrival order.
func (c *Controller) Start() {
	c.macs.Start()
	go c.eventLoop()
}

// Submit queues ev for the event loop, blocking while the queue is
// full. Returns false once the controller has been stopped.
func (c *Controller) Submit(ev Event) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	select {
	case c.events <- ev:
		return true
	case <-c.quit:
		return false
	}
}

// Stop terminates the event loop and waits for it to exit. Queued
// events that have not been handled yet are discarded.
func (c *Controller) Stop() error {
	select {
	case <-c.quit:
		return nil
	default:
	}
	close(c.quit)
	<-c.finished
	c.macs.Stop()
	return nil
}

// Status implements common.SignalsReceiver.
func (c *Controller) Status() string {
	stats := c.Stats()
	return fmt.Sprintf("%s%s%+v\n", c.graph, c.macs, stats)
}

func (c *Controller) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.stats
}

// ACTOR server

func (c *Controller) eventLoop() {
	defer close(c.finished)
	for {
		select {
		case ev := <-c.events:
			if err := c.HandleEvent(ev); err != nil {
				log.Warnln("[controller]", err)
			}
		case <-c.quit:
			return
		}
	}
}

// HandleEvent dispatches ev to its handler and runs it to completion.
func (c *Controller) HandleEvent(ev Event) error {
	switch ev := ev.(type) {
	case SwitchEnter:
		c.OnSwitchEnter(ev)
	case LinkAdd:
		c.OnLinkAdd(ev)
	case PacketIn:
		return c.OnPacketIn(ev)
	default:
		return errors.Errorf("unexpected event %T", ev)
	}
	return nil
}

func (c *Controller) persistTopology() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveTopology(c.graph.Snapshot()); err != nil {
		log.Warnln("[controller] unable to persist topology:", err)
	}
}
