package bnk

import (
	"context"
	"fmt"
	"strings"
)

// AudioCodec converts between embedded payloads and playable audio. The
// engine never inspects sample data; it only moves bytes through a codec.
type AudioCodec interface {
	// Decode turns an embedded payload into audio of the given format.
	Decode(ctx context.Context, data []byte, format string) ([]byte, error)
	// Encode turns audio of the given format into an embedded payload.
	Encode(ctx context.Context, data []byte, format string) ([]byte, error)
	// Extension returns the file extension, without dot, for format.
	Extension(format string) string
}

// PassthroughCodec handles payloads that are already in the embedded
// format. Any other format is rejected.
type PassthroughCodec struct{}

func (PassthroughCodec) Decode(ctx context.Context, data []byte, format string) ([]byte, error) {
	return passthrough(data, format)
}

func (PassthroughCodec) Encode(ctx context.Context, data []byte, format string) ([]byte, error) {
	return passthrough(data, format)
}

func (PassthroughCodec) Extension(format string) string {
	if format == "" {
		return DefaultAssetFormat
	}
	return strings.ToLower(format)
}

func passthrough(data []byte, format string) ([]byte, error) {
	if format != "" && !strings.EqualFold(format, DefaultAssetFormat) {
		return nil, fmt.Errorf("format %q is not supported without a transcoder", format)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func decodeAsset(ctx context.Context, codec AudioCodec, a *Asset, format string) ([]byte, error) {
	out, err := codec.Decode(ctx, a.Data, format)
	if err != nil {
		return nil, &ConversionError{AssetID: a.ID, Format: format, Err: err}
	}
	return out, nil
}

func encodeAsset(ctx context.Context, codec AudioCodec, id uint32, data []byte, format string) ([]byte, error) {
	out, err := codec.Encode(ctx, data, format)
	if err != nil {
		return nil, &ConversionError{AssetID: id, Format: format, Err: err}
	}
	return out, nil
}
