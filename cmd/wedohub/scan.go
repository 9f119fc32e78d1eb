package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtarrant/wedohub/internal/ble"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List nearby WeDo 2.0 hubs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		adapter := ble.NewTinygoAdapter()
		devices, err := ble.ScanForHubs(adapter, hubFilter(cfg), cfg.Hub.ScanTimeout.Std())
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("no hubs found")
			return nil
		}
		for _, d := range devices {
			fmt.Printf("%-24s %s  RSSI %d\n", d.Name, d.Address, d.RSSI)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
