package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/weaveworks/ofpath/datapath"
)

func datapathCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "create-datapath NAME",
			Short: "Create an ODP datapath",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				supported, err := datapath.CreateDatapath(args[0])
				if err != nil {
					return err
				}
				if !supported {
					return errors.New("kernel does not support Open vSwitch datapaths")
				}
				return nil
			},
		},
		{
			Use:   "delete-datapath NAME",
			Short: "Delete an ODP datapath",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return datapath.DeleteDatapath(args[0])
			},
		},
		{
			Use:   "add-iface DATAPATH IFACE",
			Short: "Attach a network interface to a datapath as a switch port",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return datapath.AddDatapathInterface(args[0], args[1])
			},
		},
		{
			Use:   "clear-flows DATAPATH",
			Short: "Remove every installed flow from a datapath",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return datapath.ClearFlows(args[0])
			},
		},
	}
}
