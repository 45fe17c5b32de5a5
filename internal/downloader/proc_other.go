//go:build !unix

package downloader

import "os/exec"

func killGroupOnCancel(cmd *exec.Cmd) {}
