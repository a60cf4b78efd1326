package fs

import (
	"io"
	"os"
)

// File is the source contract the partition readers need: sequential read
// plus absolute seek, random access for mounting, and a Stat to size the
// underlying image or device.
type File interface {
	io.ReadSeekCloser
	io.ReaderAt
	Stat() (os.FileInfo, error)
}
