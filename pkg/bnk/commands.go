package bnk

import (
	"fmt"

	"github.com/hansbonini/bnktools/pkg/common"
)

// Command is a reversible mutation of the asset library.
type Command interface {
	// Execute applies the command for the first time.
	Execute()
	// Undo reverts the command.
	Undo()
	// Redo re-applies the command after an Undo.
	Redo()
	// Describe returns a short human readable summary.
	Describe() string
}

// ReplaceCommand swaps the payload of one asset.
type ReplaceCommand struct {
	asset            *Asset
	previous         []byte
	next             []byte
	previousModified bool
	previousFormat   string
	nextFormat       string
}

// NewReplaceCommand captures the current state of asset and the payload
// that will replace it. data is copied.
func NewReplaceCommand(asset *Asset, data []byte, format string) *ReplaceCommand {
	if format == "" {
		format = asset.Format
	}
	return &ReplaceCommand{
		asset:            asset,
		previous:         asset.Data,
		next:             append([]byte{}, data...),
		previousModified: asset.Modified,
		previousFormat:   asset.Format,
		nextFormat:       format,
	}
}

// Asset returns the asset the command targets.
func (c *ReplaceCommand) Asset() *Asset {
	return c.asset
}

func (c *ReplaceCommand) Execute() {
	c.apply()
}

func (c *ReplaceCommand) Undo() {
	c.asset.Data = c.previous
	c.asset.Format = c.previousFormat
	c.asset.Modified = c.previousModified
}

func (c *ReplaceCommand) Redo() {
	c.apply()
}

func (c *ReplaceCommand) apply() {
	c.asset.Data = c.next
	c.asset.Format = c.nextFormat
	c.asset.Modified = true
}

func (c *ReplaceCommand) Describe() string {
	return fmt.Sprintf("replace asset %d (%d -> %d bytes)", c.asset.ID, len(c.previous), len(c.next))
}

// CommandStack keeps a linear undo/redo history. It is not safe for
// concurrent use; callers serialize mutations.
type CommandStack struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewCommandStack creates a stack keeping at most limit undo entries.
// A limit of zero or less keeps the whole history.
func NewCommandStack(limit int) *CommandStack {
	return &CommandStack{limit: limit}
}

// Execute runs cmd, records it for undo and drops the redo history.
func (s *CommandStack) Execute(cmd Command) {
	cmd.Execute()
	s.undo = append(s.undo, cmd)
	s.redo = nil
	s.trim()
	common.LogDebug(common.DebugCommandExecuted, cmd.Describe())
}

// Undo reverts the most recent command. It reports false when there is
// nothing to undo.
func (s *CommandStack) Undo() bool {
	if len(s.undo) == 0 {
		return false
	}
	cmd := s.undo[len(s.undo)-1]
	s.undo[len(s.undo)-1] = nil
	s.undo = s.undo[:len(s.undo)-1]
	cmd.Undo()
	s.redo = append(s.redo, cmd)
	common.LogDebug(common.DebugCommandUndone, cmd.Describe())
	return true
}

// Redo re-applies the most recently undone command. It reports false when
// there is nothing to redo.
func (s *CommandStack) Redo() bool {
	if len(s.redo) == 0 {
		return false
	}
	cmd := s.redo[len(s.redo)-1]
	s.redo[len(s.redo)-1] = nil
	s.redo = s.redo[:len(s.redo)-1]
	cmd.Redo()
	s.undo = append(s.undo, cmd)
	common.LogDebug(common.DebugCommandRedone, cmd.Describe())
	return true
}

// Clear empties both histories.
func (s *CommandStack) Clear() {
	s.undo = nil
	s.redo = nil
}

func (s *CommandStack) CanUndo() bool { return len(s.undo) > 0 }
func (s *CommandStack) CanRedo() bool { return len(s.redo) > 0 }
func (s *CommandStack) UndoLen() int  { return len(s.undo) }
func (s *CommandStack) RedoLen() int  { return len(s.redo) }

func (s *CommandStack) trim() {
	if s.limit <= 0 || len(s.undo) <= s.limit {
		return
	}
	drop := len(s.undo) - s.limit
	kept := make([]Command, s.limit)
	copy(kept, s.undo[drop:])
	s.undo = kept
	common.LogDebug(common.DebugHistoryTrimmed, s.limit)
}
