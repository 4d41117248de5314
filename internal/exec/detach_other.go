//go:build !unix && !windows

package exec

import "syscall"

func detachedAttr() *syscall.SysProcAttr {
	return nil
}
