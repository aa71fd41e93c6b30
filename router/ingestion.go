package router

// OnSwitchEnter registers a joining switch, gives it an empty learned
// MAC table and installs its table-miss rule, which sends every
// unmatched packet to the controller unbuffered. Redelivery is
// harmless.
func (c *Controller) OnSwitchEnter(ev SwitchEnter) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.stats.SwitchEnters++

	if c.graph.AddSwitch(ev.Dpid, ev.Ports) {
		log.Infof("[controller] switch %s entered the network", ev.Dpid)
	} else {
		log.Infof("[controller] switch %s re-entered the network", ev.Dpid)
	}
	c.macs.InitSwitch(ev.Dpid)
	for _, port := range ev.Ports {
		log.Debugf("[controller] switch %s port %d (%s) hwaddr %s", ev.Dpid, port.PortNo, port.Name, port.HwAddr)
	}

	actions := []Action{OutputToController{MaxLen: ControllerNoBuffer}}
	if err := c.channel.SendFlowRule(ev.Dpid, TableMissPriority, Match{}, actions); err != nil {
		c.stats.SendErrors++
		log.Warnf("[controller] unable to install table-miss rule on %s: %v", ev.Dpid, err)
	}
	c.persistTopology()
}

// OnLinkAdd records a discovered link in both directions. A link that
// refers to a switch which has not joined yet is dropped; it is not
// retried.
func (c *Controller) OnLinkAdd(ev LinkAdd) {
	c.lock.Lock()
	defer c.lock.Unlock()

	link := ev.Link()
	if !c.graph.AddLink(link) {
		c.stats.LinksDropped++
		log.Debugf("[controller] dropping link %s: unknown switch", link)
		return
	}
	c.stats.LinksAdded++
	log.Infof("[controller] link added: %s", link)
	c.persistTopology()
}
