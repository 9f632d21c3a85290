// Package platform wraps the desktop integrations: the system clipboard and
// the default browser.
package platform

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

// writeClipboardFn and openURLFn are the active implementations. Tests
// replace them via StubPlatformActions to prevent side effects.
var (
	writeClipboardFn = writeClipboardImpl
	openURLFn        = openURLImpl
)

// WriteClipboard copies text to the system clipboard
func WriteClipboard(text string) error { return writeClipboardFn(text) }

// OpenURL opens a URL in the default browser
func OpenURL(url string) error { return openURLFn(url) }

// StubPlatformActions replaces clipboard and browser functions with
// recorders and returns a restore function
func StubPlatformActions(copied, opened *[]string) (restore func()) {
	origCopy, origOpen := writeClipboardFn, openURLFn
	writeClipboardFn = func(s string) error {
		if copied != nil {
			*copied = append(*copied, s)
		}
		return nil
	}
	openURLFn = func(s string) error {
		if opened != nil {
			*opened = append(*opened, s)
		}
		return nil
	}
	return func() {
		writeClipboardFn, openURLFn = origCopy, origOpen
	}
}

// Clipboard adapts WriteClipboard to the session's clipboard sink
type Clipboard struct{}

// WriteText copies text to the system clipboard
func (Clipboard) WriteText(text string) error {
	return WriteClipboard(text)
}

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// writeClipboardImpl uses the native clipboard and falls back to the
// platform's copy command when it is unavailable (no X11 or cgo)
func writeClipboardImpl(text string) error {
	clipboardOnce.Do(func() { clipboardErr = clipboard.Init() })
	if clipboardErr == nil {
		clipboard.Write(clipboard.FmtText, []byte(text))
		return nil
	}
	if err := copyCommand(text); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %v: %w", clipboardErr, err)
	}
	return nil
}

func copyCommand(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "pbcopy")
	case "linux":
		// Wayland has no X11 clipboard for the native path
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.CommandContext(ctx, "wl-copy")
		} else if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.CommandContext(ctx, "xclip", "-selection", "clipboard")
		} else {
			return fmt.Errorf("no clipboard command found (install wl-clipboard or xclip)")
		}
	case "windows":
		cmd = exec.CommandContext(ctx, "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	_, _ = stdin.Write([]byte(text))
	_ = stdin.Close()
	return cmd.Wait()
}

// openURLImpl starts the browser detached; the child outlives the caller
func openURLImpl(url string) error {
	ctx := context.Background()

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.CommandContext(ctx, "xdg-open", url)
		} else {
			return fmt.Errorf("xdg-open not found (install xdg-utils)")
		}
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
