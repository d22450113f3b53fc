//go:build unix

package shutdown

import (
	"os"

	"golang.org/x/sys/unix"
)

var (
	terminateSignals = []os.Signal{unix.SIGTERM}
	interruptSignals = []os.Signal{os.Interrupt}
)

// exitCode follows the shell convention of 128 + signal number.
func exitCode(sig os.Signal) int {
	if s, ok := sig.(unix.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
