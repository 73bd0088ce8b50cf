package wire

// Tag identifies a command within a record (spec §3 "command stream
// record", §4.3 "every command begins with u16 command-tag"). The set is
// closed; a decoder that sees an unrecognized tag fails with ProtocolError.
type Tag uint16

const (
	TagInvalid Tag = iota

	// Object construction: New<Kind>(handle, subtype).
	TagNewRenderer
	TagNewCamera
	TagNewWorld
	TagNewGeometry
	TagNewVolume
	TagNewFramebuffer
	TagNewTexture
	TagNewMaterial
	TagNewTransferFunction
	TagNewLight
	TagNewImageOp
	TagNewInstance
	TagNewGroup
	TagNewModel
	TagNewData
	TagNewSharedData

	// Parameter mutation.
	TagSetParam
	TagRemoveParam
	TagCommit

	// Lifetime.
	TagRetain
	TagRelease
	TagCopyData

	// Framebuffer / rendering.
	TagMap
	TagUnmap
	TagGetVariance
	TagResetAccumulation
	TagRenderFrame
	TagCancel
	TagGetProgress
	TagGetTaskDuration
	TagPick
	TagGetBounds

	// Control.
	TagShutdown

	// TagProtocolErrorSentinel is never a legal tag on the wire; the
	// dispatcher's decode loop treats 0xFFFF as a deliberately malformed
	// record for the protocol-error test scenario (spec S4).
	TagProtocolErrorSentinel Tag = 0xFFFF
)

var tagNames = map[Tag]string{
	TagInvalid:             "Invalid",
	TagNewRenderer:         "NewRenderer",
	TagNewCamera:           "NewCamera",
	TagNewWorld:            "NewWorld",
	TagNewGeometry:         "NewGeometry",
	TagNewVolume:           "NewVolume",
	TagNewFramebuffer:      "NewFramebuffer",
	TagNewTexture:          "NewTexture",
	TagNewMaterial:         "NewMaterial",
	TagNewTransferFunction: "NewTransferFunction",
	TagNewLight:            "NewLight",
	TagNewImageOp:          "NewImageOp",
	TagNewInstance:         "NewInstance",
	TagNewGroup:            "NewGroup",
	TagNewModel:            "NewModel",
	TagNewData:             "NewData",
	TagNewSharedData:       "NewSharedData",
	TagSetParam:            "SetParam",
	TagRemoveParam:         "RemoveParam",
	TagCommit:              "Commit",
	TagRetain:              "Retain",
	TagRelease:             "Release",
	TagCopyData:            "CopyData",
	TagMap:                 "Map",
	TagUnmap:               "Unmap",
	TagGetVariance:         "GetVariance",
	TagResetAccumulation:   "ResetAccumulation",
	TagRenderFrame:         "RenderFrame",
	TagCancel:              "Cancel",
	TagGetProgress:         "GetProgress",
	TagGetTaskDuration:     "GetTaskDuration",
	TagPick:                "Pick",
	TagGetBounds:           "GetBounds",
	TagShutdown:            "Shutdown",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "Tag(unknown)"
}

// Flushing reports whether a command with this tag forces an automatic
// buffer flush (spec §4.4): object creation that a subsequent command may
// reference across a sidechannel boundary, frame rendering, any query that
// expects a reply, and shutdown.
func (t Tag) Flushing() bool {
	switch t {
	case TagNewFramebuffer, TagRenderFrame, TagGetVariance, TagGetProgress,
		TagGetTaskDuration, TagPick, TagGetBounds, TagIsReady, TagWait, TagShutdown:
		return true
	default:
		return false
	}
}

// TagIsReady and TagWait are query tags that, like the others in Flushing,
// expect a reply and therefore force a flush before they can be issued.
const (
	TagIsReady Tag = 1000 + iota
	TagWait
)
