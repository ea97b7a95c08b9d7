// Package main runs the dreams proxy and the web surface in one container.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
)

const (
	// defaultDreamsAddr is the internal proxy address the web process calls.
	defaultDreamsAddr = "127.0.0.1:8086"
	// defaultWebAddr is the public bind address for container use.
	defaultWebAddr = "0.0.0.0:8080"
	// shutdownTimeout is the grace period before forcing child exit.
	shutdownTimeout = 10 * time.Second
)

// childProcess describes a managed child command.
type childProcess struct {
	name string
	cmd  *exec.Cmd
}

// processExit reports a child process exit result.
type processExit struct {
	name string
	err  error
}

func main() {
	log.SetPrefix("[ENTRYPOINT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dreamsAddr := getenvDefault("SOMNIA_DREAMS_HTTP_ADDR", defaultDreamsAddr)
	webAddr := getenvDefault("SOMNIA_WEB_HTTP_ADDR", defaultWebAddr)

	dreams, err := startChild("dreams", exec.Command("/app/dreams", "-http-addr="+dreamsAddr))
	if err != nil {
		log.Fatalf("failed to start dreams proxy: %v", err)
	}
	web, err := startChild("web", exec.Command(
		"/app/web",
		"-http-addr="+webAddr,
		"-api-endpoint="+dreamsEndpoint(dreamsAddr),
	))
	if err != nil {
		terminateChildren([]*childProcess{dreams})
		log.Fatalf("failed to start web: %v", err)
	}

	children := []*childProcess{dreams, web}
	exitCh := make(chan processExit, len(children))
	for _, child := range children {
		go waitChild(child, exitCh)
	}

	select {
	case <-ctx.Done():
		log.Printf("shutdown signal received")
		terminateChildren(children)
		waitForChildren(exitCh, len(children), shutdownTimeout, children)
	case exit := <-exitCh:
		log.Printf("%s exited: %v", exit.name, exit.err)
		terminateChildren(children)
		waitForChildren(exitCh, len(children)-1, shutdownTimeout, children)
		os.Exit(exitCode(exit.err))
	}
}

// dreamsEndpoint builds the proxy resource URL for a listen address.
func dreamsEndpoint(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/dreams"
}

// startChild starts a child process with inherited stdio streams.
func startChild(name string, cmd *exec.Cmd) (*childProcess, error) {
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	return &childProcess{name: name, cmd: cmd}, nil
}

func waitChild(child *childProcess, exitCh chan<- processExit) {
	exitCh <- processExit{name: child.name, err: child.cmd.Wait()}
}

func terminateChildren(children []*childProcess) {
	for _, child := range children {
		if child == nil || child.cmd == nil || child.cmd.Process == nil {
			continue
		}
		_ = child.cmd.Process.Signal(syscall.SIGTERM)
	}
}

// waitForChildren waits for the remaining exits or kills what is left.
func waitForChildren(exitCh <-chan processExit, remaining int, timeout time.Duration, children []*childProcess) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for remaining > 0 {
		select {
		case <-exitCh:
			remaining--
		case <-timer.C:
			for _, child := range children {
				if child == nil || child.cmd == nil || child.cmd.Process == nil || child.cmd.ProcessState != nil {
					continue
				}
				_ = child.cmd.Process.Kill()
			}
			return
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
