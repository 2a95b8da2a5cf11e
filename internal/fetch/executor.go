package fetch

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sync"
)

// Executor abstracts command execution for testability. Stdout and stderr
// lines arrive through separate callbacks: only stdout carries the machine
// payload, stderr is diagnostics.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, pipe := range []struct {
		r      interface{ Read([]byte) (int, error) }
		onLine func(string)
	}{{stdout, onStdout}, {stderr, onStderr}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanner := bufio.NewScanner(pipe.r)
			scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			for scanner.Scan() {
				if pipe.onLine == nil {
					continue
				}
				mu.Lock()
				pipe.onLine(scanner.Text())
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}
