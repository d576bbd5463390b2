package core

import (
	"github.com/mus-format/mus-go/varint"
)

// CheckCompletionRecord verifies that every length prefix in an encoded
// CachedCompletion fits inside bs. Call it before CachedCompletionMUS.Unmarshal
// on bytes read back from storage.
func CheckCompletionRecord(bs []byte) error {
	n, err := checkLength(bs)
	if err != nil {
		return err
	}
	_, err = checkLength(bs[n:])
	return err
}

// CheckEmbeddingRecord is CheckCompletionRecord for CachedEmbedding.
// Every vector element takes at least one byte.
func CheckEmbeddingRecord(bs []byte) error {
	if _, err := checkLength(bs); err != nil {
		return err
	}
	n, err := sliceFloat32MUS.Skip(bs)
	if err != nil {
		return ErrTruncatedRecord
	}
	_, err = checkLength(bs[n:])
	return err
}

// checkLength reads a length prefix and returns the offset just past the
// prefixed bytes.
func checkLength(bs []byte) (int, error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return 0, ErrTruncatedRecord
	}
	if length < 0 || length > len(bs)-n {
		return 0, ErrTruncatedRecord
	}
	return n + length, nil
}
