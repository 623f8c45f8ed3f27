package bnk

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestReplaceCommand_UndoRestores(t *testing.T) {
	c := loadBytes(t, sampleBank())
	a := c.Library.At(0)
	original := append([]byte{}, a.Data...)

	stack := NewCommandStack(0)
	stack.Execute(NewReplaceCommand(a, []byte("new payload"), ""))

	if !a.Modified {
		t.Error("Execute() should mark the asset modified")
	}
	if string(a.Data) != "new payload" {
		t.Errorf("data = %q, want new payload", a.Data)
	}

	if !stack.Undo() {
		t.Fatal("Undo() should succeed")
	}
	if !bytes.Equal(a.Data, original) {
		t.Error("Undo() should restore the original payload")
	}
	if a.Modified {
		t.Error("Undo() should clear the modified flag")
	}

	if !stack.Redo() {
		t.Fatal("Redo() should succeed")
	}
	if string(a.Data) != "new payload" || !a.Modified {
		t.Error("Redo() should re-apply the replacement")
	}
}

func TestReplaceCommand_CopiesPayload(t *testing.T) {
	c := loadBytes(t, sampleBank())
	a := c.Library.At(1)

	buf := []byte("caller buffer")
	stack := NewCommandStack(0)
	stack.Execute(NewReplaceCommand(a, buf, ""))
	buf[0] = 'X'

	if string(a.Data) != "caller buffer" {
		t.Errorf("data = %q, caller writes should not reach the asset", a.Data)
	}
	stack.Undo()
	stack.Redo()
	if string(a.Data) != "caller buffer" {
		t.Errorf("data after redo = %q, want caller buffer", a.Data)
	}
}

func TestReplaceCommand_Format(t *testing.T) {
	a := &Asset{ID: 1, Data: []byte{1}, Format: "wem"}
	cmd := NewReplaceCommand(a, []byte{2}, "ogg")
	cmd.Execute()
	if a.Format != "ogg" {
		t.Errorf("format = %q, want ogg", a.Format)
	}
	cmd.Undo()
	if a.Format != "wem" {
		t.Errorf("format = %q, want wem", a.Format)
	}
	if cmd.Asset() != a {
		t.Error("Asset() should return the target")
	}
}

func TestCommandStack_Empty(t *testing.T) {
	stack := NewCommandStack(0)
	if stack.Undo() || stack.Redo() {
		t.Error("Undo()/Redo() on an empty stack should be no-ops")
	}
	if stack.CanUndo() || stack.CanRedo() {
		t.Error("empty stack should have nothing to undo or redo")
	}
}

func TestCommandStack_ExecuteClearsRedo(t *testing.T) {
	a := &Asset{ID: 1, Data: []byte("a")}
	stack := NewCommandStack(0)

	stack.Execute(NewReplaceCommand(a, []byte("b"), ""))
	stack.Undo()
	if stack.RedoLen() != 1 {
		t.Fatalf("RedoLen() = %d, want 1", stack.RedoLen())
	}

	stack.Execute(NewReplaceCommand(a, []byte("c"), ""))
	if stack.CanRedo() {
		t.Error("Execute() should clear the redo history")
	}
	if stack.UndoLen() != 1 {
		t.Errorf("UndoLen() = %d, want 1", stack.UndoLen())
	}
}

func TestCommandStack_Limit(t *testing.T) {
	a := &Asset{ID: 1, Data: []byte{0}}
	stack := NewCommandStack(3)

	for i := 1; i <= 5; i++ {
		stack.Execute(NewReplaceCommand(a, []byte{byte(i)}, ""))
	}
	if stack.UndoLen() != 3 {
		t.Fatalf("UndoLen() = %d, want 3", stack.UndoLen())
	}

	for stack.Undo() {
	}
	// The two oldest replacements were dropped, so undo stops at payload 2
	if a.Data[0] != 2 {
		t.Errorf("data after undoing everything = %d, want 2", a.Data[0])
	}
}

func TestCommandStack_Clear(t *testing.T) {
	a := &Asset{ID: 1, Data: []byte{0}}
	stack := NewCommandStack(0)
	stack.Execute(NewReplaceCommand(a, []byte{1}, ""))
	stack.Execute(NewReplaceCommand(a, []byte{2}, ""))
	stack.Undo()

	stack.Clear()
	if stack.CanUndo() || stack.CanRedo() {
		t.Error("Clear() should empty both histories")
	}
}

// Undo after any sequence of replacements walks the payloads back in
// reverse, and redo walks them forward again.
func TestCommandStack_UndoRedoSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assets := []*Asset{
		{ID: 1, Data: []byte("one")},
		{ID: 2, Data: []byte("two")},
	}

	type snapshot [2]string
	take := func() snapshot {
		return snapshot{string(assets[0].Data), string(assets[1].Data)}
	}

	stack := NewCommandStack(0)
	history := []snapshot{take()}
	for i := 0; i < 20; i++ {
		a := assets[rng.Intn(len(assets))]
		payload := make([]byte, 1+rng.Intn(8))
		rng.Read(payload)
		stack.Execute(NewReplaceCommand(a, payload, ""))
		history = append(history, take())
	}

	for i := len(history) - 2; i >= 0; i-- {
		if !stack.Undo() {
			t.Fatalf("Undo() failed at step %d", i)
		}
		if take() != history[i] {
			t.Fatalf("after undo to step %d state = %v, want %v", i, take(), history[i])
		}
	}
	if assets[0].Modified || assets[1].Modified {
		t.Error("undoing everything should clear every modified flag")
	}

	for i := 1; i < len(history); i++ {
		if !stack.Redo() {
			t.Fatalf("Redo() failed at step %d", i)
		}
		if take() != history[i] {
			t.Fatalf("after redo to step %d state = %v, want %v", i, take(), history[i])
		}
	}
}
