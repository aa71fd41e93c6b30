package router

import (
	"net"

	"github.com/pkg/errors"

	"github.com/weaveworks/ofpath/common"
	"github.com/weaveworks/ofpath/topology"
)

// FlowInstaller turns a path into one forwarding rule per hop.
type FlowInstaller struct {
	channel ControlChannel
	graph   *topology.Graph
	macs    *topology.MacCache
}

func NewFlowInstaller(channel ControlChannel, graph *topology.Graph, macs *topology.MacCache) *FlowInstaller {
	return &FlowInstaller{channel: channel, graph: graph, macs: macs}
}

// HopRules computes the rules InstallPath would send for path. Every
// switch after the first gets one rule matching frames for dstMAC
// arriving from the previous switch, and forwarding them towards the
// next switch, or, on the last switch, out of the port dstMAC was
// learned on. Hops whose ports cannot be resolved are returned as
// errors instead.
func (fi *FlowInstaller) HopRules(path topology.Path, dstMAC net.HardwareAddr) ([]FlowRule, []error) {
	var (
		rules []FlowRule
		errs  []error
	)
	for i := 1; i < len(path); i++ {
		hop := path[i]
		inPort, found := fi.graph.Port(hop, path[i-1])
		if !found {
			errs = append(errs, errors.Errorf("no port on %s facing %s", hop, path[i-1]))
			continue
		}
		var outPort topology.PortNo
		if i < len(path)-1 {
			outPort, found = fi.graph.Port(hop, path[i+1])
			if !found {
				errs = append(errs, errors.Errorf("no port on %s facing %s", hop, path[i+1]))
				continue
			}
		} else {
			outPort, found = fi.macs.ResolvePort(hop, dstMAC)
			if !found {
				errs = append(errs, errors.Errorf("%s has not been learned on %s", dstMAC, hop))
				continue
			}
		}
		rules = append(rules, FlowRule{
			Dpid:     hop,
			Priority: PathPriority,
			Match:    MatchInPortEthDst(inPort, dstMAC),
			Actions:  []Action{OutputToPort{Port: outPort}},
		})
	}
	return rules, errs
}

// InstallPath pushes the hop rules of path to their switches without
// waiting for acknowledgement. A failed send does not stop the
// remaining hops. Returns the number of rules the channel accepted and
// the first error encountered.
func (fi *FlowInstaller) InstallPath(path topology.Path, dstMAC net.HardwareAddr) (int, error) {
	rules, errs := fi.HopRules(path, dstMAC)
	for _, err := range errs {
		common.Log.Warnf("[flows] path %s: %v", path, err)
	}
	var firstErr error
	if len(errs) > 0 {
		firstErr = errs[0]
	}

	sent := 0
	for _, rule := range rules {
		common.Log.Debugf("[flows] installing %s", rule)
		if err := fi.channel.SendFlowRule(rule.Dpid, rule.Priority, rule.Match, rule.Actions); err != nil {
			err = errors.Wrapf(err, "sending flow rule to %s", rule.Dpid)
			common.Log.Warnln("[flows]", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	return sent, firstErr
}
