package subcmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/scitags/rdma-res-go/netlink"
)

var Devices = &cobra.Command{
	Use:   "devices",
	Short: "List the RDMA devices resources can be queried on.",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := netlink.Dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		devs, err := conn.Devices()
		if err != nil {
			return err
		}
		slog.Debug("got devices", "n", len(devs))

		for _, dev := range devs {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", dev.Index, dev.Name)
		}
		return nil
	},
}
