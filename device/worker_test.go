package device

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/wire"
)

func TestDecodeInboundDataArray_Inline(t *testing.T) {
	d := newTestDevice(t)
	d.group = &fakeGroup{}

	arr := &DataArrayFixture
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	require.NoError(t, enc.PutDataArray(arr))

	dec := wire.NewDecoder(bytes.NewReader(buf.Bytes()))
	got, err := d.decodeInboundDataArray(context.Background(), dec)
	require.NoError(t, err)
	require.Equal(t, arr.Bytes, got.Bytes)
}

func TestDecodeInboundDataArray_Sidechannel(t *testing.T) {
	d := newTestDevice(t)
	fg := &fakeGroup{sidechannel: [][]byte{DataArrayFixture.Bytes}}
	d.group = fg

	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	require.NoError(t, enc.PutDataArrayHeader(&DataArrayFixture))

	dec := wire.NewDecoder(bytes.NewReader(buf.Bytes()))
	got, err := d.decodeInboundDataArray(context.Background(), dec)
	require.NoError(t, err)
	require.Equal(t, DataArrayFixture.Bytes, got.Bytes)
}

func TestWorkerHandlers_CoversEveryKindTag(t *testing.T) {
	d := newTestDevice(t)
	table := d.workerHandlers()
	for kind, tag := range kindTags {
		_, ok := table[tag]
		require.Truef(t, ok, "no handler registered for kind %v's tag %v", kind, tag)
	}
	for _, tag := range []wire.Tag{
		wire.TagNewData, wire.TagNewSharedData, wire.TagSetParam, wire.TagRemoveParam,
		wire.TagCommit, wire.TagRetain, wire.TagRelease, wire.TagCopyData,
		wire.TagNewFramebuffer, wire.TagResetAccumulation, wire.TagCancel,
		wire.TagRenderFrame, wire.TagShutdown,
	} {
		_, ok := table[tag]
		require.Truef(t, ok, "missing handler for %v", tag)
	}
}

func TestHandleRenderFrame_RendersOnlyOwnSlice(t *testing.T) {
	d := newTestDevice(t)
	d.Rank = 2 // workerIndex = Rank-1 = 1, matching assignments[1] below
	fg := &fakeGroup{}
	d.group = fg

	fbHandle, err := d.NewFramebuffer(64, 128, 0)
	require.NoError(t, err)
	fb, err := d.framebuffer(fbHandle)
	require.NoError(t, err)

	cameraHandle := d.nextHandle()
	cam := newCommittedCamera()
	require.NoError(t, d.registry.Assign(cameraHandle, cam))

	worldHandle := d.nextHandle()
	rendererHandle := d.nextHandle()
	futureHandle := d.nextHandle()

	assignments := [][]uint32{{}, {0, 1}} // worker index 0 gets nothing, index 1 (rank 2) gets tiles 0,1
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	require.NoError(t, enc.PutHandle(futureHandle))
	require.NoError(t, enc.PutHandle(worldHandle))
	require.NoError(t, enc.PutHandle(cameraHandle))
	require.NoError(t, enc.PutHandle(fbHandle))
	require.NoError(t, enc.PutHandle(rendererHandle))
	require.NoError(t, enc.PutUint32(uint32(len(assignments))))
	for _, tiles := range assignments {
		require.NoError(t, enc.PutUint32(uint32(len(tiles))))
		for _, tile := range tiles {
			require.NoError(t, enc.PutUint32(tile))
		}
	}

	require.NoError(t, d.handleRenderFrame(context.Background(), buf.Bytes()))
	require.Len(t, fg.sent, 2)
	require.Greater(t, fb.Progress(), float32(0))
}
