package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const firmwareOptionName = "firmware"

// newRootCommand 离线工具：解码 MSP 载荷、查询消息标识
func newRootCommand(out io.Writer) *cobra.Command {
	var firmware string
	cmd := &cobra.Command{
		Use:           "mspctl",
		Short:         "Offline MSP payload decoder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&firmware, firmwareOptionName, "INAV", "固件分支（INAV/BTFL/CLFL/ARDU/RCFL，空为 NONE）")
	cmd.AddCommand(newDecodeCommand(&firmware))
	cmd.AddCommand(newIDsCommand())
	return cmd
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mspctl:", err)
		os.Exit(1)
	}
}
