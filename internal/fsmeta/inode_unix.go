//go:build unix

package fsmeta

import "syscall"

// getInode extracts the inode number from os.FileInfo.Sys(). On Unix
// systems this is the real inode, giving identity tokens that survive
// renames within the watched directory.
func getInode(sys interface{}) uint64 {
	if stat, ok := sys.(*syscall.Stat_t); ok {
		return stat.Ino
	}
	return 0
}
