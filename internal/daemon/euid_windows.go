//go:build windows

package daemon

// Windows has no uid 0; the root refusal never trips there.
func systemEuid() int { return -1 }
func systemUid() int  { return -1 }
