//go:build windows
// +build windows

package colors

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32           = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleMode = kernel32.NewProc("GetConsoleMode")
)

var enabled bool

// EnableColor will make a kernel call to see whether ANSI escape codes are supported on the stdout channel for the
// Windows system.
func EnableColor() {
	var mode uint32
	if r, _, _ := procGetConsoleMode.Call(os.Stdout.Fd(), uintptr(unsafe.Pointer(&mode))); r != 0 && mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		enabled = true
	} else {
		enabled = false
	}
}

// Colorize returns the string s wrapped in ANSI code c assuming that ANSI is supported on the Windows version
func Colorize(s any, c Color) string {
	if !enabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
