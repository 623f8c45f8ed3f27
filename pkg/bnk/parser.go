package bnk

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hansbonini/bnktools/pkg/common"
)

// DefaultAssetFormat tags payloads read from a bank.
const DefaultAssetFormat = "wem"

// Parse interprets the chunks cataloged by Inspect. The media index is read
// first, then the media data is sliced into assets, then the header and the
// opaque chunks are read. Any failure discards the whole model.
func Parse(r io.ReadSeeker, descs []ChunkDescriptor) (*Container, error) {
	byKind := make(map[ChunkKind]ChunkDescriptor, len(descs))
	for _, d := range descs {
		byKind[d.Kind] = d
	}

	headerDesc, ok := byKind[KindHeader]
	if !ok || len(descs) == 0 || descs[0].Kind != KindHeader {
		return nil, &FormatError{Reason: "missing header chunk"}
	}

	indexDesc, hasIndex := byKind[KindAssetIndex]
	dataDesc, hasData := byKind[KindAssetData]
	if hasIndex != hasData {
		return nil, &FormatError{Reason: "asset index and asset data chunks must appear together"}
	}

	sections := make(map[ChunkKind]Section, len(descs))
	var assets []*Asset

	if hasIndex {
		index, err := parseAssetIndex(r, indexDesc)
		if err != nil {
			return nil, err
		}
		sections[KindAssetIndex] = index

		data, sliced, err := parseAssetData(r, dataDesc, index)
		if err != nil {
			return nil, err
		}
		sections[KindAssetData] = data
		assets = sliced
	}

	header, err := parseHeader(r, headerDesc, hasIndex)
	if err != nil {
		return nil, err
	}
	sections[KindHeader] = header

	for _, d := range descs {
		switch d.Kind {
		case KindHeader, KindAssetIndex, KindAssetData:
			continue
		case KindEnvironment, KindEffectProgram, KindObjectHierarchy, KindInit,
			KindPlatform, KindSoundTypeIndex, KindStateManager:
			payload, err := readPayload(r, d)
			if err != nil {
				return nil, err
			}
			common.LogDebug(common.DebugOpaqueChunk, d.Kind, len(payload))
			sections[d.Kind] = &OpaqueSection{desc: d, Payload: payload}
		default:
			return nil, &FormatError{Reason: "unhandled chunk kind " + d.Kind.String()}
		}
	}

	ordered := make([]Section, 0, len(descs))
	for _, d := range descs {
		ordered = append(ordered, sections[d.Kind])
	}

	return &Container{
		Sections: ordered,
		Header:   header,
		Library:  NewAssetLibrary(assets),
	}, nil
}

func readPayload(r io.ReadSeeker, d ChunkDescriptor) ([]byte, error) {
	if _, err := r.Seek(d.PayloadOffset(), io.SeekStart); err != nil {
		return nil, ioErr("failed to seek to "+d.Kind.String(), err)
	}
	payload, err := common.ReadBytes(r, int(d.Size))
	if err != nil {
		return nil, ioErr("failed to read "+d.Kind.String(), err)
	}
	return payload, nil
}

func parseAssetIndex(r io.ReadSeeker, d ChunkDescriptor) (*AssetIndexSection, error) {
	if d.Size%IndexRecordSize != 0 {
		return nil, &FormatError{Reason: "malformed asset index"}
	}
	payload, err := readPayload(r, d)
	if err != nil {
		return nil, err
	}

	count := int(d.Size / IndexRecordSize)
	records := make([]IndexRecord, count)
	seen := make(map[uint32]bool, count)
	for i := range records {
		rec := payload[i*IndexRecordSize:]
		records[i] = IndexRecord{
			AssetID:        binary.LittleEndian.Uint32(rec[0:4]),
			RelativeOffset: binary.LittleEndian.Uint32(rec[4:8]),
			Size:           binary.LittleEndian.Uint32(rec[8:12]),
		}
		if seen[records[i].AssetID] {
			return nil, &FormatError{Reason: "duplicate asset id"}
		}
		seen[records[i].AssetID] = true
		common.LogDebug(common.DebugIndexRecord, i, records[i].AssetID, records[i].RelativeOffset, records[i].Size)
	}

	return &AssetIndexSection{desc: d, Records: records}, nil
}

func parseAssetData(r io.ReadSeeker, d ChunkDescriptor, index *AssetIndexSection) (*AssetDataSection, []*Asset, error) {
	for _, rec := range index.Records {
		end := uint64(rec.RelativeOffset) + uint64(rec.Size)
		if end > uint64(d.Size) {
			return nil, nil, &BoundsError{Reason: "asset payload exceeds data chunk"}
		}
	}

	payload, err := readPayload(r, d)
	if err != nil {
		return nil, nil, err
	}

	assets := make([]*Asset, len(index.Records))
	for i, rec := range index.Records {
		start := int(rec.RelativeOffset)
		data := make([]byte, rec.Size)
		copy(data, payload[start:start+int(rec.Size)])
		assets[i] = &Asset{ID: rec.AssetID, Data: data, Format: DefaultAssetFormat}
	}

	return &AssetDataSection{desc: d}, assets, nil
}

func parseHeader(r io.ReadSeeker, d ChunkDescriptor, hasMedia bool) (*HeaderSection, error) {
	if d.Size < HeaderFixedSize {
		return nil, &FormatError{Reason: "header too short"}
	}
	payload, err := readPayload(r, d)
	if err != nil {
		return nil, err
	}

	fields := bytes.NewReader(payload)
	version, err := common.ReadUint32LE(fields)
	if err != nil {
		return nil, ioErr("failed to read header version", err)
	}
	bankID, err := common.ReadUint32LE(fields)
	if err != nil {
		return nil, ioErr("failed to read bank id", err)
	}

	header := &HeaderSection{
		desc:    d,
		Version: version,
		BankID:  bankID,
		Tail:    payload[HeaderFixedSize:],
	}
	common.LogDebug(common.DebugHeaderInfo, header.Version, header.BankID, len(header.Tail))

	if header.Version <= LegacyVersionLimit && hasMedia {
		return nil, &UnsupportedVersionError{Version: header.Version}
	}
	return header, nil
}
