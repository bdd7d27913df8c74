package snapshot

import (
	"bytes"
	"encoding/binary"
	"hash/adler32"
)

// ChecksumSize is the exact size of a stored checksum. Checksum files
// holding any other number of bytes are malformed.
const ChecksumSize = 4

// Checksum computes the Adler-32 checksum of data, big-endian encoded.
// This is the on-disk format of .hash files: the four bytes stored next
// to snapshot content are exactly the return value of this function.
func Checksum(data []byte) [ChecksumSize]byte {
	var buf [ChecksumSize]byte
	binary.BigEndian.PutUint32(buf[:], adler32.Checksum(data))
	return buf
}

// VerifyChecksum reports whether stored holds the checksum of data.
func VerifyChecksum(data, stored []byte) bool {
	sum := Checksum(data)
	return bytes.Equal(stored, sum[:])
}
