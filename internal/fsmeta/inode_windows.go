//go:build windows

package fsmeta

// getInode extracts a file identifier from os.FileInfo.Sys(). Windows has
// no inode concept in the stat result, so identity falls back to the
// absolute path alone.
func getInode(sys interface{}) uint64 {
	return 0
}
