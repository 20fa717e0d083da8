package wire

import "hash/adler32"

// Checksum computes the RFC 1950 Adler-32 checksum used to guard every
// frame body. An empty payload checksums to 0 on the wire, not to
// Adler-32's usual initial value of 1.
func Checksum(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	return adler32.Checksum(data)
}
