package fuse

// FileEntry is one byte range of the disk exposed as a virtual file,
// typically a partition.
type FileEntry struct {
	Name   string
	Offset uint64
	Size   uint64
}
