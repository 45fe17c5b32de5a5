//go:build unix

package downloader

import (
	"os/exec"
	"syscall"
)

// killGroupOnCancel runs the downloader in its own process group and
// kills the whole group when the run context ends, so helpers it spawned
// (ffmpeg, postprocessors) cannot keep the output pipes open.
func killGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
