// Package wire implements the offload core's command codec (C3): a
// deterministic, little-endian binary encoding for every value type that
// crosses the fabric between host and workers.
//
// The encoder/decoder pairing is grounded on the overload-per-type shape of
// OSPRay's mpi::CommandStream (send/get pairs per wire type), adapted to
// Go's single binary.Write/Read primitive plus explicit length prefixes:
// fixed-width scalars and floats, u32-length-prefixed UTF-8 strings,
// u64-count-prefixed variable containers, and u16-tag-prefixed tagged
// unions for Parameter values.
package wire

// ProtocolVersion identifies the wire format. Bump it whenever a DataType is
// added, removed, or its encoding changes shape; host and worker refuse to
// talk to a mismatched version (see Handshake in the fabric package).
const ProtocolVersion uint32 = 1
