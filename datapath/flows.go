package datapath

import (
	"net"

	"github.com/pkg/errors"
	"github.com/weaveworks/go-odp/odp"

	"github.com/weaveworks/ofpath/router"
	"github.com/weaveworks/ofpath/topology"
)

// ODP has no table-miss entry: a packet matching no flow is always
// handed up to the miss consumer. A rule whose only effect is to punt
// to the controller is therefore already in force.
func isTableMiss(actions []router.Action) bool {
	if len(actions) == 0 {
		return false
	}
	for _, action := range actions {
		if _, ok := action.(router.OutputToController); !ok {
			return false
		}
	}
	return true
}

func ethAddr(mac net.HardwareAddr) (addr [odp.ETH_ALEN]byte, err error) {
	if len(mac) != odp.ETH_ALEN {
		return addr, errors.Errorf("not an Ethernet address: %s", mac)
	}
	copy(addr[:], mac)
	return addr, nil
}

// odpFlowKeys translates a match. Fields left unset in the match are
// not added, so the kernel treats them as wildcards.
func odpFlowKeys(match router.Match) (odp.FlowKeys, error) {
	keys := odp.MakeFlowKeys()
	if match.InPort != nil {
		keys.Add(odp.NewInPortFlowKey(odp.VportID(*match.InPort)))
	}
	if match.EthDst != nil {
		addr, err := ethAddr(match.EthDst)
		if err != nil {
			return nil, err
		}
		// New keys match exactly on every field
		fk := odp.NewEthernetFlowKey()
		fk.SetMaskedEthSrc([odp.ETH_ALEN]byte{}, [odp.ETH_ALEN]byte{})
		fk.SetEthDst(addr)
		keys.Add(fk)
	}
	return keys, nil
}

// odpActions translates output actions. Flooding expands to every
// vport of the datapath other than the one the packet came in on.
func odpActions(actions []router.Action, inPort topology.PortNo, vports []odp.VportID) ([]odp.Action, error) {
	var res []odp.Action
	for _, action := range actions {
		switch action := action.(type) {
		case router.OutputToPort:
			switch action.Port {
			case router.PortFlood:
				for _, vport := range vports {
					if vport != odp.VportID(inPort) {
						res = append(res, odp.NewOutputAction(vport))
					}
				}
			case router.PortController:
				return nil, errors.New("cannot output to the controller from a datapath flow")
			default:
				res = append(res, odp.NewOutputAction(odp.VportID(action.Port)))
			}
		case router.OutputToController:
			return nil, errors.New("cannot output to the controller from a datapath flow")
		default:
			return nil, errors.Errorf("unsupported action %s", action)
		}
	}
	return res, nil
}

func odpFlowSpec(match router.Match, actions []router.Action, vports []odp.VportID) (odp.FlowSpec, error) {
	flow := odp.NewFlowSpec()
	keys, err := odpFlowKeys(match)
	if err != nil {
		return flow, err
	}
	for _, key := range keys {
		flow.AddKey(key)
	}
	inPort := router.PortFlood
	if match.InPort != nil {
		inPort = *match.InPort
	}
	odpActs, err := odpActions(actions, inPort, vports)
	if err != nil {
		return flow, err
	}
	for _, action := range odpActs {
		flow.AddAction(action)
	}
	return flow, nil
}
