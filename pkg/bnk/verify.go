package bnk

import (
	"bytes"
	"context"

	"github.com/hansbonini/bnktools/pkg/common"
)

// VerifyReport is the outcome of a parse and rebuild round trip.
type VerifyReport struct {
	SourceSize  int
	RebuiltSize int
	Identical   bool
	// MismatchOffset is the first differing byte, or -1 when identical.
	MismatchOffset int
	Assets         int
	Chunks         []ChunkKind
}

// Verify parses data, rebuilds it unmodified and compares the two images.
// Structural errors in data are returned as errors; a differing rebuild is
// reported, not returned as an error.
func Verify(ctx context.Context, data []byte) (*VerifyReport, error) {
	c, err := Load(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}
	rebuilt, err := Rebuild(c)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		SourceSize:     len(data),
		RebuiltSize:    len(rebuilt),
		Identical:      bytes.Equal(data, rebuilt),
		MismatchOffset: -1,
		Assets:         c.Library.Len(),
		Chunks:         c.Order(),
	}
	if !report.Identical {
		report.MismatchOffset = firstMismatch(data, rebuilt)
		common.LogWarn(common.WarnRoundTripMismatch, report.MismatchOffset, len(data), len(rebuilt))
	}
	return report, nil
}

func firstMismatch(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
