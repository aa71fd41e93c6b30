package router

import (
	"fmt"
	"net"
	"strings"

	"github.com/weaveworks/ofpath/topology"
)

// Match is the condition half of a flow rule. Unset fields are
// wildcards.
type Match struct {
	InPort *topology.PortNo
	EthDst net.HardwareAddr
}

func MatchInPortEthDst(inPort topology.PortNo, ethDst net.HardwareAddr) Match {
	return Match{InPort: &inPort, EthDst: ethDst}
}

func (m Match) String() string {
	var fields []string
	if m.InPort != nil {
		fields = append(fields, fmt.Sprintf("in_port=%d", *m.InPort))
	}
	if m.EthDst != nil {
		fields = append(fields, fmt.Sprintf("eth_dst=%s", m.EthDst))
	}
	if len(fields) == 0 {
		return "*"
	}
	return strings.Join(fields, ",")
}

// Action is the effect half of a flow rule, or what a packet-out does
// with its packet.
type Action interface {
	fmt.Stringer
	isAction()
}

type OutputToPort struct {
	Port topology.PortNo
}

func (OutputToPort) isAction() {}

func (a OutputToPort) String() string {
	switch a.Port {
	case PortFlood:
		return "output:flood"
	case PortController:
		return "output:controller"
	}
	return fmt.Sprintf("output:%d", a.Port)
}

// OutputToController punts packets to the controller, sending at most
// MaxLen bytes of each (ControllerNoBuffer for whole packets).
type OutputToController struct {
	MaxLen uint16
}

func (OutputToController) isAction() {}

func (a OutputToController) String() string {
	if a.MaxLen == ControllerNoBuffer {
		return "output:controller(no-buffer)"
	}
	return fmt.Sprintf("output:controller(max_len=%d)", a.MaxLen)
}

// FlowRule is one rule as handed to the control channel.
type FlowRule struct {
	Dpid     topology.DPID
	Priority uint16
	Match    Match
	Actions  []Action
}

func (rule FlowRule) String() string {
	return fmt.Sprintf("%s priority=%d %s actions=%v", rule.Dpid, rule.Priority, rule.Match, rule.Actions)
}
