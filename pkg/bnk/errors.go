package bnk

import (
	"errors"
	"fmt"

	"github.com/hansbonini/bnktools/pkg/common"
)

// Error classes. Every typed error below matches exactly one of these with
// errors.Is.
var (
	ErrFormat             = errors.New("invalid container format")
	ErrBounds             = errors.New("out of bounds")
	ErrUnsupportedVersion = errors.New("unsupported bank version")
	ErrIO                 = errors.New("i/o failure")
	ErrCanceled           = errors.New("operation canceled")
	ErrConversion         = errors.New("audio conversion failed")
)

// ErrNotFound is returned when an asset id is not present in the library.
var ErrNotFound = errors.New(common.ErrAssetNotFound)

// FormatError reports a structural violation of the container layout.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s", e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// DuplicateSectionError reports a chunk tag seen twice.
type DuplicateSectionError struct {
	Tag    [4]byte
	Offset int64
}

func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("duplicate section %s at offset 0x%X", common.PrintableTag(e.Tag), e.Offset)
}

func (e *DuplicateSectionError) Is(target error) bool { return target == ErrFormat }

// UnknownChunkError reports a chunk tag outside the known set.
type UnknownChunkError struct {
	Tag    [4]byte
	Offset int64
}

func (e *UnknownChunkError) Error() string {
	return fmt.Sprintf("unknown chunk %q at offset 0x%X", common.PrintableTag(e.Tag), e.Offset)
}

func (e *UnknownChunkError) Is(target error) bool { return target == ErrFormat }

// BoundsError reports a range that falls outside its enclosing extent.
type BoundsError struct {
	Reason string
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("bounds error: %s", e.Reason)
}

func (e *BoundsError) Is(target error) bool { return target == ErrBounds }

// UnsupportedVersionError reports a legacy bank layout.
type UnsupportedVersionError struct {
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("bank version %d uses a legacy media layout", e.Version)
}

func (e *UnsupportedVersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// IOError wraps a stream or file access failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// CancellationError reports a cooperative abort. It unwraps to the context
// error that caused it.
type CancellationError struct {
	Err error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("canceled: %v", e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }

func (e *CancellationError) Is(target error) bool { return target == ErrCanceled }

// ConversionError passes through a failure of the audio codec.
type ConversionError struct {
	AssetID uint32
	Format  string
	Err     error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("asset %d (%s): %v", e.AssetID, e.Format, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

func ioErr(op string, err error) error {
	return &IOError{Op: op, Err: err}
}
