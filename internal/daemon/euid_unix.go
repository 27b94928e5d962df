//go:build !windows

package daemon

import "golang.org/x/sys/unix"

func systemEuid() int { return unix.Geteuid() }
func systemUid() int  { return unix.Getuid() }
