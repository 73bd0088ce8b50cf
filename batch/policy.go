package batch

// Policy controls when a Buffer serializes a data payload inline versus
// over the sidechannel, and when it triggers an automatic flush (spec §4.4).
type Policy struct {
	// InlineThreshold is the largest data payload, in bytes, serialized
	// inline into the command buffer. Larger payloads are sent as a
	// separate sidechannel broadcast immediately before the command that
	// references them.
	InlineThreshold int64

	// FlushBytes triggers an automatic flush once the buffer's
	// accumulated size exceeds it.
	FlushBytes int64

	// FlushCommands triggers an automatic flush once the number of
	// batched commands exceeds it.
	FlushCommands int
}

// DefaultPolicy returns the spec's default thresholds: 4 MiB inline, 512 MiB
// buffer size, 8192 commands.
func DefaultPolicy() Policy {
	return Policy{
		InlineThreshold: 4 << 20,
		FlushBytes:      512 << 20,
		FlushCommands:   8192,
	}
}

// ScaledBy returns a copy of p with FlushBytes multiplied by scale, the
// write-buffer-scale device parameter from spec §6.
func (p Policy) ScaledBy(scale float64) Policy {
	p.FlushBytes = int64(float64(p.FlushBytes) * scale)
	return p
}
