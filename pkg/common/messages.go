package common

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
)

// Global variable to control debug output
var VerboseMode bool = false

func init() {
	SetLogOutput(os.Stderr)
}

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
	if verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// SetLogOutput routes all log messages to w using the CLI handler.
func SetLogOutput(w io.Writer) {
	log.SetHandler(cli.New(w))
}

// Error messages
const (
	ErrFailedToOpenBank        = "failed to open sound bank"
	ErrFailedToParseBank       = "failed to parse sound bank"
	ErrFailedToRebuildBank     = "failed to rebuild sound bank"
	ErrFailedToSaveBank        = "failed to save sound bank"
	ErrFailedToReadPayload     = "failed to read replacement payload"
	ErrFailedToReplaceAsset    = "failed to replace embedded asset"
	ErrFailedToExtractAssets   = "failed to extract embedded assets"
	ErrFailedToImportAssets    = "failed to import replacement assets"
	ErrFailedToAssignNames     = "failed to assign asset names"
	ErrFailedToWriteManifest   = "failed to write bank manifest"
	ErrFailedToReadConfig      = "failed to read configuration file"
	ErrFailedToParseConfig     = "failed to parse configuration file"
	ErrFailedToCreateBackup    = "failed to create bank backup"
	ErrFailedToRestoreBackup   = "failed to restore bank backup"
	ErrFailedToCreateOutputDir = "failed to create output directory"
	ErrAssetNotFound           = "asset id not present in bank"
	ErrInvalidAssetID          = "asset id must be a decimal number"
)

// Info messages
const (
	InfoBankOpened      = "Opened bank %s: version %d, bank id %d, %d assets"
	InfoBankSaved       = "Bank written to %s (%d bytes)"
	InfoAssetReplaced   = "Replaced asset %d (%d -> %d bytes)"
	InfoAssetsExtracted = "Extracted %d assets to %s"
	InfoAssetsImported  = "Imported %d replacement assets from %s"
	InfoNamesAssigned   = "Assigned names to %d of %d assets"
	InfoManifestWritten = "Manifest written to %s"
	InfoBackupCreated   = "Backup of previous bank stored at %s"
	InfoBackupRestored  = "Bank restored from %s"
	InfoRoundTripOK     = "Rebuild is byte-identical (%d bytes)"
)

// Debug messages
const (
	DebugChunkFound      = "Chunk %s at offset 0x%X, %d bytes"
	DebugTrailingBytes   = "%d trailing bytes after last chunk"
	DebugIndexRecord     = "Index record %d: id=%d offset=%d size=%d"
	DebugHeaderInfo      = "Header: version=%d, bank id=%d, tail=%d bytes"
	DebugOpaqueChunk     = "Keeping %s verbatim (%d bytes)"
	DebugRebuildAsset    = "Asset %d: offset=%d size=%d padded=%d"
	DebugRebuildComplete = "Rebuild complete: %d chunks, %d bytes"
	DebugCommandExecuted = "Executed: %s"
	DebugCommandUndone   = "Undone: %s"
	DebugCommandRedone   = "Redone: %s"
	DebugHistoryTrimmed  = "Undo history trimmed to %d entries"
	DebugNameMapping     = "Name index: %s -> %s"
	DebugNameIndexBuilt  = "Name index built with %d entries"
	DebugAssetExtracted  = "Extracted asset %d -> %s"
	DebugProgress        = "Progress: %d/%d"
)

// Warning messages
const (
	WarnRoundTripMismatch = "Rebuild differs from source at offset 0x%X (source %d bytes, rebuilt %d bytes)"
	WarnSkippingFile      = "Skipping %s: %s"
	WarnAmbiguousName     = "Name %q is shared by assets %d and %d, use the asset id as file name"
	WarnUnsavedChanges    = "Closing bank with %d unsaved modified assets"
	WarnNoBackupFound     = "No backup found for %s"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Infof(message, args...)
	} else {
		log.Info(message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Warnf(message, args...)
	} else {
		log.Warn(message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Errorf(message, args...)
	} else {
		log.Error(message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Debugf(message, args...)
	} else {
		log.Debug(message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
