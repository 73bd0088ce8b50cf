package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/types"
)

// TestSetParam_RetainsReferencedHandle exercises spec scenario S5: a
// material set as a model's param survives Release(material) until the
// model referencing it is itself released.
func TestSetParam_RetainsReferencedHandle(t *testing.T) {
	d := newTestDevice(t)
	material, err := d.NewMaterial("matte")
	require.NoError(t, err)
	model, err := d.NewModel()
	require.NoError(t, err)

	require.NoError(t, d.SetParam(model, "material", types.HandleParam(types.DataTypeMaterialHandle, material)))
	require.NoError(t, d.Commit(model))

	require.NoError(t, d.Release(material))
	require.True(t, d.registry.Contains(material), "material should survive while model still references it")

	require.NoError(t, d.Release(model))
	require.False(t, d.registry.Contains(material), "material should be destroyed once its last reference is gone")
}

// TestSetParam_OverwriteReleasesPreviousReference checks that reassigning
// a handle-valued parameter releases whichever object it used to point
// to, rather than leaking a retain.
func TestSetParam_OverwriteReleasesPreviousReference(t *testing.T) {
	d := newTestDevice(t)
	first, err := d.NewMaterial("matte")
	require.NoError(t, err)
	second, err := d.NewMaterial("matte")
	require.NoError(t, err)
	model, err := d.NewModel()
	require.NoError(t, err)

	require.NoError(t, d.SetParam(model, "material", types.HandleParam(types.DataTypeMaterialHandle, first)))
	require.NoError(t, d.SetParam(model, "material", types.HandleParam(types.DataTypeMaterialHandle, second)))

	require.NoError(t, d.Release(first))
	require.False(t, d.registry.Contains(first), "overwritten reference should have been released immediately")
	require.True(t, d.registry.Contains(second))

	require.NoError(t, d.RemoveParam(model, "material"))
	require.NoError(t, d.Release(second))
	require.False(t, d.registry.Contains(second), "removing the pending param should release its target")
}

func TestApplyParamRefcount_SameHandleIsNoop(t *testing.T) {
	d := newTestDevice(t)
	h, err := d.NewMaterial("matte")
	require.NoError(t, err)

	p := types.HandleParam(types.DataTypeMaterialHandle, h)
	require.NoError(t, d.applyParamRefcount(p, true, p, true))

	// A no-op refcount change means the single initial reference from
	// NewMaterial is still the only one: one Release should destroy it.
	require.NoError(t, d.Release(h))
	require.False(t, d.registry.Contains(h))
}

func TestObjectCommitted_TracksFirstCommitOnly(t *testing.T) {
	obj := object.New(object.KindModel, "")
	require.False(t, obj.Committed())
	obj.Commit()
	require.True(t, obj.Committed())
	obj.SetParam("x", types.BoolParam(true))
	require.True(t, obj.Committed(), "still committed even with a pending uncommitted edit")
}
