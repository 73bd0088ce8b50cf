package device

import (
	"bytes"
	"fmt"

	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// kindTags maps every object.Kind to the construction tag the command
// stream uses for it (spec §4.3's New<Kind> family). Data and
// SharedData are handled separately since their payload shape differs
// from every other object kind.
var kindTags = map[object.Kind]wire.Tag{
	object.KindRenderer:         wire.TagNewRenderer,
	object.KindCamera:           wire.TagNewCamera,
	object.KindWorld:            wire.TagNewWorld,
	object.KindGeometry:         wire.TagNewGeometry,
	object.KindVolume:           wire.TagNewVolume,
	object.KindTexture:          wire.TagNewTexture,
	object.KindMaterial:         wire.TagNewMaterial,
	object.KindTransferFunction: wire.TagNewTransferFunction,
	object.KindLight:            wire.TagNewLight,
	object.KindImageOp:          wire.TagNewImageOp,
	object.KindInstance:         wire.TagNewInstance,
	object.KindGroup:            wire.TagNewGroup,
	object.KindModel:            wire.TagNewModel,
}

var tagKinds = func() map[wire.Tag]object.Kind {
	m := make(map[wire.Tag]object.Kind, len(kindTags))
	for k, t := range kindTags {
		m[t] = k
	}
	return m
}()

// New constructs a managed object of kind/subType, local to this Device's
// registry, and (on the host) broadcasts the construction command so
// every worker mirrors the same entry under the same handle.
func (d *Device) New(kind object.Kind, subType object.SubType) (types.Handle, error) {
	tag, ok := kindTags[kind]
	if !ok {
		return types.NullHandle, fmt.Errorf("device: kind %s has no New command", kind)
	}
	h := d.nextHandle()
	if err := d.registry.Assign(h, object.New(kind, subType)); err != nil {
		return types.NullHandle, err
	}
	if d.buf == nil {
		return h, nil
	}
	return h, d.sendNew(tag, h, string(subType))
}

func (d *Device) sendNew(tag wire.Tag, h types.Handle, subType string) error {
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	if err := enc.PutString(subType); err != nil {
		return err
	}
	return d.buf.PutRecord(tag, buf.Bytes())
}

// NewRenderer, NewCamera, ... are the spec's one-line-per-kind
// convenience wrappers around New.
func (d *Device) NewRenderer(subType string) (types.Handle, error) {
	return d.New(object.KindRenderer, object.SubType(subType))
}
func (d *Device) NewCamera(subType string) (types.Handle, error) {
	return d.New(object.KindCamera, object.SubType(subType))
}
func (d *Device) NewWorld() (types.Handle, error) {
	return d.New(object.KindWorld, "")
}
func (d *Device) NewGeometry(subType string) (types.Handle, error) {
	return d.New(object.KindGeometry, object.SubType(subType))
}
func (d *Device) NewVolume(subType string) (types.Handle, error) {
	return d.New(object.KindVolume, object.SubType(subType))
}
func (d *Device) NewTexture(subType string) (types.Handle, error) {
	return d.New(object.KindTexture, object.SubType(subType))
}
func (d *Device) NewMaterial(subType string) (types.Handle, error) {
	return d.New(object.KindMaterial, object.SubType(subType))
}
func (d *Device) NewTransferFunction(subType string) (types.Handle, error) {
	return d.New(object.KindTransferFunction, object.SubType(subType))
}
func (d *Device) NewLight(subType string) (types.Handle, error) {
	return d.New(object.KindLight, object.SubType(subType))
}
func (d *Device) NewImageOp(subType string) (types.Handle, error) {
	return d.New(object.KindImageOp, object.SubType(subType))
}
func (d *Device) NewInstance() (types.Handle, error) {
	return d.New(object.KindInstance, "")
}
func (d *Device) NewGroup() (types.Handle, error) {
	return d.New(object.KindGroup, "")
}
func (d *Device) NewModel() (types.Handle, error) {
	return d.New(object.KindModel, "")
}

// NewData constructs an owned Data object wrapping a private copy of
// array's bytes.
func (d *Device) NewData(array *types.DataArray) (types.Handle, error) {
	return d.newDataObject(array, false)
}

// NewSharedData constructs a Data object wrapping array without copying
// it — the caller retains ownership of the backing bytes for as long as
// the handle is alive (spec §3 "shared data").
func (d *Device) NewSharedData(array *types.DataArray) (types.Handle, error) {
	return d.newDataObject(array, true)
}

func (d *Device) newDataObject(array *types.DataArray, shared bool) (types.Handle, error) {
	h := d.nextHandle()
	obj := object.New(object.KindData, "")
	a := *array
	a.Shared = shared
	obj.SetParam("data", types.DataParam(&a))
	obj.Commit()
	if err := d.registry.Assign(h, obj); err != nil {
		return types.NullHandle, err
	}
	if d.buf == nil {
		return h, nil
	}

	tag := wire.TagNewData
	if shared {
		tag = wire.TagNewSharedData
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return types.NullHandle, err
	}
	if err := d.buf.EncodeDataArray(enc, &a); err != nil {
		return types.NullHandle, err
	}
	return h, d.buf.PutRecord(tag, buf.Bytes())
}

// CopyData copies source's bytes into dest at the given element offset
// (spec's CopyData host API entry point, for assembling a destination
// array from several sources).
func (d *Device) CopyData(dest, source types.Handle, offset types.Vec3i) error {
	destObj, err := d.registry.Get(dest)
	if err != nil {
		return err
	}
	srcObj, err := d.registry.Get(source)
	if err != nil {
		return err
	}
	destParam, ok := destObj.Param("data")
	if !ok || destParam.Data == nil {
		return fmt.Errorf("device: %s is not a Data object", dest)
	}
	srcParam, ok := srcObj.Param("data")
	if !ok || srcParam.Data == nil {
		return fmt.Errorf("device: %s is not a Data object", source)
	}
	copyInto(destParam.Data, srcParam.Data, offset)

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(dest); err != nil {
		return err
	}
	if err := enc.PutHandle(source); err != nil {
		return err
	}
	if err := enc.PutVec3i(offset); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagCopyData, buf.Bytes())
}

func copyInto(dest, src *types.DataArray, offset types.Vec3i) {
	if len(src.Bytes) == 0 {
		return
	}
	destOffset := int(offset.X)*int(dest.Strides.X) +
		int(offset.Y)*int(dest.Strides.Y) +
		int(offset.Z)*int(dest.Strides.Z)
	if destOffset < 0 || destOffset > len(dest.Bytes) {
		return
	}
	copy(dest.Bytes[destOffset:], src.Bytes)
}

// applyParamRefcount adjusts d.registry's refcounts for a parameter
// change: a handle-valued parameter keeps its target alive from the
// moment it is assigned, not just once committed, so releasing that
// target before the owning object is ever committed must not destroy it
// out from under a pending SetParam (spec §3: "parameter assignment that
// names another managed object increments the target's refcount").
func (d *Device) applyParamRefcount(old types.Parameter, hadOld bool, next types.Parameter, hadNext bool) error {
	sameHandle := hadOld && hadNext && old.ReferencesHandle() && next.ReferencesHandle() && old.Handle == next.Handle
	if sameHandle {
		return nil
	}
	if hadOld && old.ReferencesHandle() {
		if _, _, err := d.registry.Release(old.Handle); err != nil {
			return err
		}
	}
	if hadNext && next.ReferencesHandle() {
		if _, err := d.registry.Retain(next.Handle); err != nil {
			return err
		}
	}
	return nil
}

// SetParam stages name=value on handle's pending parameter map, visible
// to Commit but not to rendering until committed (spec's committed/dirty
// split).
func (d *Device) SetParam(h types.Handle, name string, value types.Parameter) error {
	obj, err := d.registry.Get(h)
	if err != nil {
		return err
	}
	old, hadOld := obj.PendingParam(name)
	obj.SetParam(name, value)
	if err := d.applyParamRefcount(old, hadOld, value, true); err != nil {
		return err
	}

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	if err := enc.PutString(name); err != nil {
		return err
	}
	if err := enc.PutParameter(value); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagSetParam, buf.Bytes())
}

// RemoveParam clears a pending (uncommitted) parameter.
func (d *Device) RemoveParam(h types.Handle, name string) error {
	obj, err := d.registry.Get(h)
	if err != nil {
		return err
	}
	old, hadOld := obj.PendingParam(name)
	obj.RemoveParam(name)
	if err := d.applyParamRefcount(old, hadOld, types.Parameter{}, false); err != nil {
		return err
	}

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	if err := enc.PutString(name); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagRemoveParam, buf.Bytes())
}

// Commit publishes handle's pending parameters, making them visible to
// rendering (spec's committed/dirty invariant). Refcounts on any
// handle-valued parameter were already adjusted when SetParam/RemoveParam
// staged the change; Commit only flips which snapshot renders read.
func (d *Device) Commit(h types.Handle) error {
	obj, err := d.registry.Get(h)
	if err != nil {
		return err
	}
	obj.Commit()

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagCommit, buf.Bytes())
}

// Retain increments handle's reference count.
func (d *Device) Retain(h types.Handle) error {
	if _, err := d.registry.Retain(h); err != nil {
		return err
	}
	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagRetain, buf.Bytes())
}

// Release decrements handle's reference count, destroying the object
// locally once it reaches zero. Destroying an object releases every
// handle-valued parameter it holds in turn, so a chain of references
// (e.g. a model naming a material naming a texture) unwinds completely
// once its root is released, rather than leaking the tail of the chain
// (spec §3 "parameter assignment that names another managed object
// increments the target's refcount").
func (d *Device) Release(h types.Handle) error {
	if err := d.releaseLocal(h); err != nil {
		return err
	}

	if d.buf == nil {
		return nil
	}
	var buf bytes.Buffer
	enc := wire.NewEncoder(&buf)
	if err := enc.PutHandle(h); err != nil {
		return err
	}
	return d.buf.PutRecord(wire.TagRelease, buf.Bytes())
}

// releaseLocal performs the registry-local half of Release, shared by
// the host (Release) and worker (handleRelease) paths: decrement h's
// refcount, and on destruction release every handle it referenced.
func (d *Device) releaseLocal(h types.Handle) error {
	obj, destroyed, err := d.registry.Release(h)
	if err != nil {
		return err
	}
	d.mu.Lock()
	delete(d.fbs, h)
	d.mu.Unlock()
	if !destroyed {
		return nil
	}
	for _, ref := range obj.ReferencedHandles() {
		if err := d.releaseLocal(ref); err != nil {
			return err
		}
	}
	return nil
}
