// Package persistence frames serialized ensembles for storage.
//
// An envelope wraps the raw model stream produced by a trainer's Store:
//
//	[magic "XVAL"][version u16][compression u8][reserved u8]
//	[description length u16][description]
//	[raw length u64][stored length u64][crc32 u32]
//	[payload]
//
// All integers are little-endian. The checksum covers the stored (possibly
// compressed) payload bytes.
package persistence
