package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// ErrNotFound reports that a binary is not on PATH. Errors returned by Run
// and Version match it with errors.Is.
var ErrNotFound = exec.ErrNotFound

var _ RunFunc = Run

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, SIGTERM is sent first, then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}
	path, err := exec.LookPath(cmd.Binary)
	if err != nil {
		return nil, fmt.Errorf("process: %w", err)
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, path, cmd.Args...) //nolint:gosec // running arbitrary binaries is the point
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	// own process group so cancellation reaches children too
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err = c.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
		}
		return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, err)
	}
	return result, nil
}

// Version runs binary with args (typically "-version" or "--version") and
// returns the first non-empty output line. Tools differ on whether they
// print it to stdout or stderr, so both are read.
func Version(ctx context.Context, run RunFunc, binary string, args ...string) (string, error) {
	res, err := run(ctx, Command{Binary: binary, Args: args, GracePeriod: time.Second})
	if err != nil {
		return "", err
	}
	for _, out := range [][]byte{res.Stdout, res.Stderr} {
		if line := firstLine(out); line != "" {
			return line, nil
		}
	}
	return "", errors.New("process: " + binary + " printed no version")
}

func firstLine(out []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	return append(os.Environ(), extra...)
}
