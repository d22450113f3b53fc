// Package job runs external commands as protected work.
//
// A Command is started with the host's shutdown context. When shutdown is
// requested the child receives an interrupt and is killed if it has not
// exited after WaitDelay.
package job
