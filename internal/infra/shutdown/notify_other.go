//go:build !unix

package shutdown

import (
	"os"
	"syscall"
)

var (
	terminateSignals = []os.Signal{syscall.SIGTERM}
	interruptSignals = []os.Signal{os.Interrupt}
)

func exitCode(os.Signal) int {
	return 1
}
