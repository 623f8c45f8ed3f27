package bnk

import (
	"io"

	"github.com/hansbonini/bnktools/pkg/common"
)

// Inspect scans r once from offset 0 and returns the chunk catalog in file
// order together with any trailing bytes too short to form a chunk header.
// No payload is interpreted. On failure nothing is returned.
func Inspect(r io.ReadSeeker) ([]ChunkDescriptor, []byte, error) {
	length, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, nil, ioErr("failed to measure stream", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, ioErr("failed to rewind stream", err)
	}

	if length < 4 {
		return nil, nil, &FormatError{Reason: "unrecognized container"}
	}
	magic, err := common.ReadTag(r)
	if err != nil {
		return nil, nil, ioErr("failed to read container magic", err)
	}
	if magic != KindHeader.Tag() {
		return nil, nil, &FormatError{Reason: "unrecognized container"}
	}

	var descs []ChunkDescriptor
	seen := make(map[ChunkKind]bool)

	pos := int64(0)
	for length-pos >= ChunkHeaderSize {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return nil, nil, ioErr("failed to seek to chunk", err)
		}
		tag, err := common.ReadTag(r)
		if err != nil {
			return nil, nil, ioErr("failed to read chunk header", err)
		}
		size, err := common.ReadUint32LE(r)
		if err != nil {
			return nil, nil, ioErr("failed to read chunk header", err)
		}

		kind, ok := KindForTag(tag)
		if !ok {
			return nil, nil, &UnknownChunkError{Tag: tag, Offset: pos}
		}
		if seen[kind] {
			return nil, nil, &DuplicateSectionError{Tag: tag, Offset: pos}
		}

		desc := ChunkDescriptor{Kind: kind, Offset: pos, Size: size}
		if desc.End() > length {
			return nil, nil, &BoundsError{Reason: "chunk exceeds stream"}
		}

		common.LogDebug(common.DebugChunkFound, kind, pos, size)
		seen[kind] = true
		descs = append(descs, desc)
		pos = desc.End()
	}

	var trailing []byte
	if pos < length {
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return nil, nil, ioErr("failed to seek to trailing bytes", err)
		}
		trailing, err = common.ReadBytes(r, int(length-pos))
		if err != nil {
			return nil, nil, ioErr("failed to read trailing bytes", err)
		}
		common.LogDebug(common.DebugTrailingBytes, len(trailing))
	}

	return descs, trailing, nil
}
