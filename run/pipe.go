package run

import (
	"os"
	"os/exec"
)

// spawnPipe runs the command without a terminal, for internalConsole
// presets. stdout and stderr are merged into one stream and stdin stays
// writable; the program sees plain pipes when it probes for a tty.
func spawnPipe(r *Run, onExit func(id string)) error {
	cmd := exec.Command(r.Argv[0], r.Argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = cmd.Environ()
	for k, v := range r.env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		stdin.Close()
		pr.Close()
		pw.Close()
		return err
	}
	// The child owns the write end now; closing ours lets the read loop
	// see EOF when the process exits.
	pw.Close()

	r.cmd = cmd
	r.stdin = stdin

	go readLoop(r, pr, onExit)
	return nil
}
