// Command rrtune tunes and benchmarks the btrfs raid1 read policies for a
// mounted filesystem.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
