// Package bnk implements reading, editing and rebuilding of chunk-based
// sound bank containers.
//
// A bank is a sequence of chunks, each made of a four byte tag, a
// little-endian uint32 payload length and the payload itself. The header
// chunk always comes first and every tag appears at most once. Only the
// header, the media index and the media data chunks are interpreted; every
// other chunk is carried as an opaque blob and written back untouched.
package bnk

import (
	"fmt"

	"github.com/hansbonini/bnktools/pkg/common"
)

// ChunkHeaderSize is the size of a tag plus its length field.
const ChunkHeaderSize = 8

// IndexRecordSize is the size of one media index record.
const IndexRecordSize = 12

// HeaderFixedSize is the interpreted part of the header payload.
const HeaderFixedSize = 8

// LegacyVersionLimit is the highest bank version using the legacy media
// layout.
const LegacyVersionLimit = 26

// ChunkKind identifies a chunk variant.
type ChunkKind int

const (
	KindHeader ChunkKind = iota
	KindAssetIndex
	KindAssetData
	KindEnvironment
	KindEffectProgram
	KindObjectHierarchy
	KindInit
	KindPlatform
	KindSoundTypeIndex
	KindStateManager
)

var kindTags = [...][4]byte{
	KindHeader:          {'B', 'K', 'H', 'D'},
	KindAssetIndex:      {'D', 'I', 'D', 'X'},
	KindAssetData:       {'D', 'A', 'T', 'A'},
	KindEnvironment:     {'E', 'N', 'V', 'S'},
	KindEffectProgram:   {'F', 'X', 'P', 'R'},
	KindObjectHierarchy: {'H', 'I', 'R', 'C'},
	KindInit:            {'I', 'N', 'I', 'T'},
	KindPlatform:        {'P', 'L', 'A', 'T'},
	KindSoundTypeIndex:  {'S', 'T', 'I', 'D'},
	KindStateManager:    {'S', 'T', 'M', 'G'},
}

var kindNames = [...]string{
	KindHeader:          "Header",
	KindAssetIndex:      "AssetIndex",
	KindAssetData:       "AssetData",
	KindEnvironment:     "Environment",
	KindEffectProgram:   "EffectProgram",
	KindObjectHierarchy: "ObjectHierarchy",
	KindInit:            "Init",
	KindPlatform:        "Platform",
	KindSoundTypeIndex:  "SoundTypeIndex",
	KindStateManager:    "StateManager",
}

// Tag returns the four byte identifier of the kind.
func (k ChunkKind) Tag() [4]byte {
	return kindTags[k]
}

func (k ChunkKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("ChunkKind(%d)", int(k))
	}
	return fmt.Sprintf("%s(%s)", kindNames[k], common.PrintableTag(kindTags[k]))
}

// Opaque reports whether chunks of this kind are kept verbatim.
func (k ChunkKind) Opaque() bool {
	return k != KindHeader && k != KindAssetIndex && k != KindAssetData
}

// KindForTag maps a chunk identifier to its kind.
func KindForTag(tag [4]byte) (ChunkKind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return ChunkKind(k), true
		}
	}
	return 0, false
}

// ChunkDescriptor locates a chunk in the source stream.
type ChunkDescriptor struct {
	Kind ChunkKind
	// Offset of the chunk tag from the start of the stream.
	Offset int64
	// Declared payload length, excluding the chunk header.
	Size uint32
}

// PayloadOffset returns the stream offset of the first payload byte.
func (d ChunkDescriptor) PayloadOffset() int64 {
	return d.Offset + ChunkHeaderSize
}

// End returns the stream offset just past the payload.
func (d ChunkDescriptor) End() int64 {
	return d.PayloadOffset() + int64(d.Size)
}

// Section is one parsed chunk. The set of implementations is closed:
// *HeaderSection, *AssetIndexSection, *AssetDataSection and *OpaqueSection.
type Section interface {
	Kind() ChunkKind
	Descriptor() ChunkDescriptor
	isSection()
}

// HeaderSection is the bank header chunk.
type HeaderSection struct {
	desc    ChunkDescriptor
	Version uint32
	BankID  uint32
	// Tail holds the header bytes following version and bank id.
	Tail []byte
}

// IndexRecord is one entry of the media index.
type IndexRecord struct {
	AssetID uint32
	// Offset from the first byte of the media data payload.
	RelativeOffset uint32
	Size           uint32
}

// AssetIndexSection is the media index chunk as read from the source. The
// records are recomputed from the library on rebuild.
type AssetIndexSection struct {
	desc    ChunkDescriptor
	Records []IndexRecord
}

// AssetDataSection is the media data chunk. Its payload lives in the
// library's assets after parsing.
type AssetDataSection struct {
	desc ChunkDescriptor
}

// OpaqueSection is any chunk whose payload is not interpreted.
type OpaqueSection struct {
	desc    ChunkDescriptor
	Payload []byte
}

func (s *HeaderSection) Kind() ChunkKind     { return KindHeader }
func (s *AssetIndexSection) Kind() ChunkKind { return KindAssetIndex }
func (s *AssetDataSection) Kind() ChunkKind  { return KindAssetData }
func (s *OpaqueSection) Kind() ChunkKind     { return s.desc.Kind }

func (s *HeaderSection) Descriptor() ChunkDescriptor     { return s.desc }
func (s *AssetIndexSection) Descriptor() ChunkDescriptor { return s.desc }
func (s *AssetDataSection) Descriptor() ChunkDescriptor  { return s.desc }
func (s *OpaqueSection) Descriptor() ChunkDescriptor     { return s.desc }

func (*HeaderSection) isSection()     {}
func (*AssetIndexSection) isSection() {}
func (*AssetDataSection) isSection()  {}
func (*OpaqueSection) isSection()     {}
