package device

import (
	"bytes"

	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// encodeTileSubmission frames one worker's completed tile as
// (framebuffer handle, tile id, sample count, color count and color[],
// depth count and depth[] (count 0 when there is no depth), variance) for
// point-to-point delivery back to the host.
func encodeTileSubmission(fb types.Handle, tile types.TileID, samples types.TileSamples) ([]byte, error) {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(fb); err != nil {
		return nil, err
	}
	if err := enc.PutUint32(uint32(tile)); err != nil {
		return nil, err
	}
	if err := encodeTileSamples(enc, samples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeTileSamples(enc *wire.Encoder, samples types.TileSamples) error {
	if err := enc.PutInt32(samples.Samples); err != nil {
		return err
	}
	if err := enc.PutUint32(uint32(len(samples.Color))); err != nil {
		return err
	}
	for _, c := range samples.Color {
		if err := enc.PutVec4(c); err != nil {
			return err
		}
	}
	if err := enc.PutUint32(uint32(len(samples.Depth))); err != nil {
		return err
	}
	for _, z := range samples.Depth {
		if err := enc.PutFloat32(z); err != nil {
			return err
		}
	}
	return enc.PutFloat32(samples.Variance)
}

func decodeTileSamples(dec *wire.Decoder) (types.TileSamples, error) {
	var out types.TileSamples
	spp, err := dec.GetInt32()
	if err != nil {
		return out, err
	}
	out.Samples = spp

	numColor, err := dec.GetUint32()
	if err != nil {
		return out, err
	}
	out.Color = make([]types.Vec4, numColor)
	for i := range out.Color {
		v, err := dec.GetVec4()
		if err != nil {
			return out, err
		}
		out.Color[i] = v
	}

	numDepth, err := dec.GetUint32()
	if err != nil {
		return out, err
	}
	if numDepth > 0 {
		out.Depth = make([]float32, numDepth)
		for i := range out.Depth {
			z, err := dec.GetFloat32()
			if err != nil {
				return out, err
			}
			out.Depth[i] = z
		}
	}

	variance, err := dec.GetFloat32()
	if err != nil {
		return out, err
	}
	out.Variance = variance
	return out, nil
}
