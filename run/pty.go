package run

import (
	"errors"
	"io"
	"log"
	"os/exec"

	"github.com/creack/pty"
)

// spawnPTY runs the command on a pseudo-terminal, for presets whose
// console is integratedTerminal or externalTerminal.
func spawnPTY(r *Run, onExit func(id string)) error {
	cmd := exec.Command(r.Argv[0], r.Argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = append(cmd.Environ(), "TERM=xterm-256color")
	for k, v := range r.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	r.ptmx = ptmx
	r.cmd = cmd

	go readLoop(r, ptmx, onExit)
	return nil
}

// readLoop pumps process output into the scrollback and the connected
// client until the stream closes, then reaps the exit code.
func readLoop(r *Run, src io.ReadCloser, onExit func(id string)) {
	defer src.Close()
	buf := make([]byte, 4096)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])

			r.scrollback.Write(data)
			r.touch()

			r.outMu.Lock()
			if r.outChan != nil {
				select {
				case r.outChan <- data:
				default:
				}
			}
			r.outMu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("run %s output read error: %v", r.ID, err)
			}
			r.finish(reapExitCode(r.cmd))
			close(r.done)
			onExit(r.ID)
			return
		}
	}
}

// reapExitCode waits for the process and extracts its exit code. Signal
// deaths report -1.
func reapExitCode(cmd *exec.Cmd) int {
	if cmd == nil {
		return -1
	}
	err := cmd.Wait()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
