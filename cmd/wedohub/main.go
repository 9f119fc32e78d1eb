// wedohub is a command-line controller for a LEGO WeDo 2.0 Bluetooth hub:
// it scans for the hub, connects, initializes attached peripherals and
// runs motor, LED and sensor control loops against it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
