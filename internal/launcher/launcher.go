// Package launcher opens URLs and interactive container shells on the host.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/pkg/browser"
)

// DefaultShell is the program started inside the container.
const DefaultShell = "sh"

// Options configures a Launcher.
type Options struct {
	// RuntimeCLI is the runtime command used for exec (docker, podman).
	RuntimeCLI string
	// Shell is the program started inside the container.
	Shell string
	// Terminal overrides the platform terminal emulator.
	Terminal string
	// TerminalArgs precede the exec command line when Terminal is set.
	TerminalArgs []string
}

// Launcher opens the default browser and starts terminals as detached host processes.
type Launcher struct {
	goos        string
	opts        Options
	openBrowser func(url string) error
}

// New creates a Launcher for the current platform.
func New(opts Options) *Launcher {
	if opts.RuntimeCLI == "" {
		opts.RuntimeCLI = "docker"
	}
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	return &Launcher{goos: runtime.GOOS, opts: opts, openBrowser: browser.OpenURL}
}

// OpenURL opens url in the default browser. It does not wait for the browser.
func (l *Launcher) OpenURL(ctx context.Context, url string) error {
	if err := l.openBrowser(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	logging.L(ctx).Debugf("Opened %s in the default browser.", url)
	return nil
}

// OpenInteractiveShell opens a terminal running an interactive shell in the container.
func (l *Launcher) OpenInteractiveShell(ctx context.Context, containerName string) error {
	name, args, err := l.terminalCommand(ExecCommandLine(l.opts.RuntimeCLI, containerName, l.opts.Shell))
	if err != nil {
		return err
	}
	return l.start(ctx, name, args)
}

func (l *Launcher) start(ctx context.Context, name string, args []string) error {
	// Not bound to ctx: the launched program outlives the request.
	cmd := exec.Command(name, args...) //nolint:gosec,noctx // name comes from platform defaults or operator config
	if err := cmd.Start(); err != nil {
		return err
	}

	logging.L(ctx).Debugf("Started %s (pid %d).", name, cmd.Process.Pid)
	go func() {
		_ = cmd.Wait() // Reap the child; its exit status is not ours to report
	}()
	return nil
}

// ExecCommandLine builds the shell command line that opens an interactive
// shell in the container.
func ExecCommandLine(runtimeCLI, containerName, shell string) string {
	return fmt.Sprintf("%s exec -it %s %s", runtimeCLI, containerName, shell)
}

func (l *Launcher) terminalCommand(commandLine string) (string, []string, error) {
	if l.opts.Terminal != "" {
		args := append(append([]string(nil), l.opts.TerminalArgs...), commandLine)
		return l.opts.Terminal, args, nil
	}

	switch l.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "gnome-terminal", []string{"--", "bash", "-c", commandLine}, nil
	case "darwin":
		script := fmt.Sprintf(`tell application "Terminal" to do script "%s"`, strings.ReplaceAll(commandLine, `"`, `\"`))
		return "osascript", []string{"-e", script}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "cmd", "/k", commandLine}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", l.goos)
	}
}
