package tui

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = systemClipboard

type clipboardTool struct {
	name string
	args []string
}

// clipboardTools lists the copy commands to try for goos, in order.
func clipboardTools(goos string) []clipboardTool {
	switch goos {
	case "darwin":
		return []clipboardTool{{name: "pbcopy"}}
	case "windows":
		return []clipboardTool{
			{name: "cmd", args: []string{"/c", "clip"}},
			{name: "powershell", args: []string{"-NoProfile", "-Command", "Set-Clipboard"}},
		}
	default:
		return []clipboardTool{
			{name: "wl-copy"},
			{name: "xclip", args: []string{"-selection", "clipboard"}},
			{name: "xsel", args: []string{"--clipboard", "--input"}},
		}
	}
}

// systemClipboard pipes text into the first copy command that succeeds.
func systemClipboard(text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var tried []string
	for _, tool := range clipboardTools(runtime.GOOS) {
		if _, err := exec.LookPath(tool.name); err != nil {
			continue
		}
		cmd := exec.Command(tool.name, tool.args...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err != nil {
			tried = append(tried, fmt.Sprintf("%s: %v", tool.name, err))
			continue
		}
		return nil
	}
	if len(tried) == 0 {
		return errors.New("no clipboard command available")
	}
	return errors.New("clipboard copy failed (" + strings.Join(tried, "; ") + ")")
}
