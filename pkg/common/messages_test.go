// Package common provides tests for message and logging functionality
package common

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

// captureLog routes log output into a buffer for the duration of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		SetVerboseMode(false)
	})
	return &buf
}

func TestSetVerboseMode(t *testing.T) {
	// Test enabling verbose mode
	SetVerboseMode(true)
	if !VerboseMode {
		t.Error("SetVerboseMode(true) should enable verbose mode")
	}

	// Test disabling verbose mode
	SetVerboseMode(false)
	if VerboseMode {
		t.Error("SetVerboseMode(false) should disable verbose mode")
	}
}

func TestLogDebug_VerboseEnabled(t *testing.T) {
	buf := captureLog(t)

	// Enable verbose mode
	SetVerboseMode(true)

	// Test debug logging
	testMessage := "Test debug message with value: %d"
	LogDebug(testMessage, 42)

	output := buf.String()
	if !strings.Contains(output, "Test debug message with value: 42") {
		t.Errorf("LogDebug output should contain formatted message, got: %q", output)
	}
}

func TestLogDebug_VerboseDisabled(t *testing.T) {
	buf := captureLog(t)

	// Disable verbose mode
	SetVerboseMode(false)

	// Test debug logging (should be silent)
	LogDebug("This should not appear", 42)

	output := buf.String()
	if output != "" {
		t.Errorf("LogDebug should be silent when verbose mode is disabled, got: %q", output)
	}
}

func TestLogLevels(t *testing.T) {
	testCases := []struct {
		name     string
		log      func(string, ...interface{})
		message  string
		args     []interface{}
		expected string
	}{
		{"info with args", LogInfo, "Test info message with value: %s", []interface{}{"test"}, "Test info message with value: test"},
		{"info plain", LogInfo, "Plain info", nil, "Plain info"},
		{"warn with args", LogWarn, "Test warning message with value: %d", []interface{}{123}, "Test warning message with value: 123"},
		{"warn plain", LogWarn, "Plain warning", nil, "Plain warning"},
		{"error with args", LogError, "Test error message with value: %s", []interface{}{"error"}, "Test error message with value: error"},
		{"error plain", LogError, "Plain error", nil, "Plain error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLog(t)
			tc.log(tc.message, tc.args...)

			output := buf.String()
			if !strings.Contains(output, tc.expected) {
				t.Errorf("output should contain %q, got: %q", tc.expected, output)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	baseMessage := "Base error message"
	originalError := fmt.Errorf("original error")

	formattedError := FormatError(baseMessage, originalError)

	expectedMessage := "Base error message: original error"
	if formattedError.Error() != expectedMessage {
		t.Errorf("FormatError() = %q, want %q", formattedError.Error(), expectedMessage)
	}
	if !errors.Is(formattedError, originalError) {
		t.Error("FormatError() should wrap the original error")
	}
}

func TestFormatError_NonError(t *testing.T) {
	formattedError := FormatError("Base error message", 42)

	expectedMessage := "Base error message: 42"
	if formattedError.Error() != expectedMessage {
		t.Errorf("FormatError() = %q, want %q", formattedError.Error(), expectedMessage)
	}
}

func TestFormatErrorString(t *testing.T) {
	testCases := []struct {
		name     string
		details  string
		args     []interface{}
		expected string
	}{
		{"plain details", "bad input", nil, "Base: bad input"},
		{"formatted details", "value %d out of range", []interface{}{7}, "Base: value 7 out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := FormatErrorString("Base", tc.details, tc.args...)
			if err.Error() != tc.expected {
				t.Errorf("FormatErrorString() = %q, want %q", err.Error(), tc.expected)
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	// Test that error constants are not empty
	errorConstants := map[string]string{
		"ErrFailedToOpenBank":        ErrFailedToOpenBank,
		"ErrFailedToParseBank":       ErrFailedToParseBank,
		"ErrFailedToRebuildBank":     ErrFailedToRebuildBank,
		"ErrFailedToSaveBank":        ErrFailedToSaveBank,
		"ErrFailedToReadPayload":     ErrFailedToReadPayload,
		"ErrFailedToReplaceAsset":    ErrFailedToReplaceAsset,
		"ErrFailedToExtractAssets":   ErrFailedToExtractAssets,
		"ErrFailedToImportAssets":    ErrFailedToImportAssets,
		"ErrFailedToAssignNames":     ErrFailedToAssignNames,
		"ErrFailedToWriteManifest":   ErrFailedToWriteManifest,
		"ErrFailedToReadConfig":      ErrFailedToReadConfig,
		"ErrFailedToParseConfig":     ErrFailedToParseConfig,
		"ErrFailedToCreateBackup":    ErrFailedToCreateBackup,
		"ErrFailedToRestoreBackup":   ErrFailedToRestoreBackup,
		"ErrFailedToCreateOutputDir": ErrFailedToCreateOutputDir,
		"ErrAssetNotFound":           ErrAssetNotFound,
		"ErrInvalidAssetID":          ErrInvalidAssetID,
	}

	for name, value := range errorConstants {
		if value == "" {
			t.Errorf("Error constant %s should not be empty", name)
		}
		if len(value) < 10 {
			t.Errorf("Error constant %s seems too short: %q", name, value)
		}
	}
}

func TestInfoConstants(t *testing.T) {
	// Info messages are format strings; each must take at least one argument
	infoConstants := map[string]string{
		"InfoBankOpened":      InfoBankOpened,
		"InfoBankSaved":       InfoBankSaved,
		"InfoAssetReplaced":   InfoAssetReplaced,
		"InfoAssetsExtracted": InfoAssetsExtracted,
		"InfoAssetsImported":  InfoAssetsImported,
		"InfoNamesAssigned":   InfoNamesAssigned,
		"InfoManifestWritten": InfoManifestWritten,
		"InfoBackupCreated":   InfoBackupCreated,
		"InfoBackupRestored":  InfoBackupRestored,
		"InfoRoundTripOK":     InfoRoundTripOK,
	}

	for name, value := range infoConstants {
		if !strings.Contains(value, "%") {
			t.Errorf("Info constant %s should be a format string: %q", name, value)
		}
	}
}
