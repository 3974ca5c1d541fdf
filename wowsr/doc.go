// Package wowsr reads and writes World of Warships replay (.wowsreplay) files.
//
// A replay file is laid out as
//
//	magic:u32le 0x11343212
//	blockCount:u32le
//	blockCount x (size:u32le, JSON)       block 0 is the match metadata
//	decompressedSize:u32le
//	streamSize:u32le
//	encrypted packet stream
//
// The packet stream is zlib compressed and then Blowfish encrypted with a
// fixed key, where every 8-byte block is XORed with the previous plaintext
// block before encryption. Decrypted and inflated, it is a sequence of
//
//	payloadSize:u32le, type:u32le, clock:f32le, payload
//
// Entity packets are decoded through the entity catalog of the replay's game
// version (package entitydef). Payloads that cannot be resolved against the
// catalog decode to schema.Empty; they never fail the replay.
//
// Writer produces files in the same format, which is how test fixtures and
// cmd/wowsr-create are built.
package wowsr
