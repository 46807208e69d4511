// Package npz writes a zstd-compressed NPZ archive: the same zip-of-.npy
// container format numpy/ndarray_npy use, but with deflate swapped for
// zstd, exercising klauspost/compress the way the teacher exercises its own
// single declared dependency minimally, except here the dependency is
// actually wired in.
package npz

import (
	"archive/zip"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdMethod is an unused zip compression-method id we register a zstd
// codec under; real npz readers that also register it will decompress
// transparently, and the zip container format itself stays standard.
const zstdMethod = 93

func init() {
	zip.RegisterCompressor(zstdMethod, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	})
	zip.RegisterDecompressor(zstdMethod, func(r io.Reader) io.ReadCloser {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil
		}
		return zr.IOReadCloser()
	})
}

// Writer accumulates named arrays into a single npz archive.
type Writer struct {
	zw *zip.Writer
}

// NewWriter returns a Writer that emits the archive to w as it is closed.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w)}
}

// WriteArray adds one member (e.g. "instruction_sizes.npy") to the archive,
// zstd-compressed.
func (w *Writer) WriteArray(name string, npy []byte) error {
	hdr := &zip.FileHeader{
		Name:   name,
		Method: zstdMethod,
	}
	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = fw.Write(npy)
	return err
}

// Close finalizes the archive's central directory.
func (w *Writer) Close() error {
	return w.zw.Close()
}
