package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"mediafetch/internal/lines"
)

// CmdSpec describes a short-lived subprocess, such as a version probe.
type CmdSpec struct {
	Path string
	Args []string
	Env  []string // KEY=VALUE pairs added to the inherited environment
	Dir  string

	StdoutLine func(string) // called for each stdout line, if set
	StderrLine func(string) // called for each stderr line, if set
}

// CmdResult holds captured output and the exit status.
type CmdResult struct {
	Stdout []byte
	Stderr []byte
	Code   int // -1 when the process did not start or died from a signal
}

// Run executes spec and waits for it. Both streams are captured in full
// and framed into lines for the optional callbacks. A non-zero exit is
// reported as an error that still carries the populated CmdResult.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CmdResult{Code: -1}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return CmdResult{Code: -1}, err
	}
	if err := cmd.Start(); err != nil {
		return CmdResult{Code: -1}, err
	}

	var outBuf, errBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		drain(stdout, &outBuf, spec.StdoutLine)
	}()
	go func() {
		defer wg.Done()
		drain(stderr, &errBuf, spec.StderrLine)
	}()
	// Pipes must be fully read before Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	res := CmdResult{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes(), Code: ExitCode(waitErr)}
	if waitErr != nil {
		return res, fmt.Errorf("%s failed (exit %d): %w", ShellQuote(spec.Path, spec.Args), res.Code, waitErr)
	}
	return res, nil
}

func drain(r io.Reader, capture *bytes.Buffer, onLine func(string)) {
	var f lines.Framer
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			capture.Write(buf[:n])
			if onLine != nil {
				for _, l := range f.Feed(buf[:n]) {
					onLine(l)
				}
			}
		}
		if err != nil {
			break
		}
	}
	if onLine != nil {
		if rest, ok := f.Flush(); ok {
			onLine(rest)
		}
	}
}

// ExitCode maps a Wait error to a process exit code: 0 for nil, the
// status for a normal exit, -1 for anything else (signals, I/O errors).
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// ShellQuote renders a command line for logs. It is never executed.
func ShellQuote(path string, args []string) string {
	var b strings.Builder
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}
