package envelope

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

func encodeZstd(raw []byte) ([]byte, error) {
	var b bytes.Buffer
	enc, err := zstd.NewWriter(&b, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// decodeZstd reads at most limit+1 decompressed bytes; an oversized frame shows up as a
// length mismatch in the caller.
func decodeZstd(compressed []byte, limit int) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(compressed), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return io.ReadAll(io.LimitReader(dec, int64(limit)+1))
}
