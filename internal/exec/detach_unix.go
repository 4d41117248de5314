//go:build unix

package exec

import "syscall"

// detachedAttr puts the child in its own process group so terminal signals
// aimed at daxbuild do not reach the launched application.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
