//go:build !unix

package job

import "os/exec"

func signalExitCode(*exec.ExitError) (int, bool) {
	return 0, false
}
