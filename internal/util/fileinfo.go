package util

import (
	"fmt"
	"os"
	"syscall"
)

// FileInfo identifies one revision of a file: its inode, size and mtime.
type FileInfo struct {
	ModTime int64  `json:"mod_time"`
	Size    int64  `json:"size"`
	Inode   uint64 `json:"inode"`
}

// GetFileInfo stats path, including its inode. Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	sysStat, ok := stat.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("failed to get file system information: %s", path)
	}

	return &FileInfo{
		ModTime: stat.ModTime().Unix(),
		Size:    stat.Size(),
		Inode:   uint64(sysStat.Ino),
	}, nil
}

// Extends reports whether f is the same file as prev, grown or unchanged.
// Session logs are append-only, so anything read from prev's prefix is still
// valid for f.
func (f FileInfo) Extends(prev FileInfo) bool {
	return f.Inode == prev.Inode && f.Size >= prev.Size
}
