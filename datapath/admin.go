package datapath

import (
	"github.com/pkg/errors"
	"github.com/weaveworks/go-odp/odp"
)

// ODP admin functionality

// CreateDatapath creates the named datapath if it does not exist.
// supported is false when the kernel has no Open vSwitch module.
func CreateDatapath(dpname string) (supported bool, err error) {
	dpif, err := odp.NewDpif()
	if err != nil {
		if odp.IsKernelLacksODPError(err) {
			return false, nil
		}
		return true, err
	}
	defer dpif.Close()

	if _, err := dpif.CreateDatapath(dpname); err != nil && !odp.IsDatapathNameAlreadyExistsError(err) {
		return true, errors.Wrapf(err, "creating datapath %q", dpname)
	}
	return true, nil
}

func DeleteDatapath(dpname string) error {
	dpif, err := odp.NewDpif()
	if err != nil {
		return err
	}
	defer dpif.Close()

	dp, err := dpif.LookupDatapath(dpname)
	if err != nil {
		if odp.IsNoSuchDatapathError(err) {
			return nil
		}
		return err
	}

	return dp.Delete()
}

// AddDatapathInterface attaches an existing network interface to the
// datapath as a new vport, that is, a new switch port.
func AddDatapathInterface(dpname string, ifname string) error {
	dpif, err := odp.NewDpif()
	if err != nil {
		return err
	}
	defer dpif.Close()

	dp, err := dpif.LookupDatapath(dpname)
	if err != nil {
		return err
	}

	_, err = dp.CreateVport(odp.NewNetdevVportSpec(ifname))
	return errors.Wrapf(err, "adding %s to datapath %q", ifname, dpname)
}

// ClearFlows removes every flow from the datapath, leaving all traffic
// to be handed to the controller.
func ClearFlows(dpname string) error {
	dpif, err := odp.NewDpif()
	if err != nil {
		return err
	}
	defer dpif.Close()

	dp, err := dpif.LookupDatapath(dpname)
	if err != nil {
		return err
	}

	flows, err := dp.EnumerateFlows()
	if err != nil {
		return err
	}
	for _, flow := range flows {
		err = dp.DeleteFlow(flow.FlowKeys)
		if err != nil && !odp.IsNoSuchFlowError(err) {
			return err
		}
	}
	return nil
}
