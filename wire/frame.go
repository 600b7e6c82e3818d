package wire

import "encoding/binary"

// FrameLenBytes is the width of the length prefix preceding every packet.
const FrameLenBytes = 4

// PutFrameLen writes n as a little-endian uint32 into buf[:4].
func PutFrameLen(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf, n)
}

// FrameLen reads a little-endian uint32 length prefix from buf[:4].
func FrameLen(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}
