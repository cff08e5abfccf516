// Package dialog models stacked modals as an immutable stack of identifiers.
// Exiting everything is a single Clear rather than resetting several flags.
package dialog

import "encoding/json"

// ID identifies a modal.
type ID string

const (
	Assignment ID = "assignment"
	Error      ID = "error"
	BulkRemind ID = "bulk_remind"
	BulkCancel ID = "bulk_cancel"
)

// Stack is an immutable stack of open modals, bottom first. Operations
// return a new Stack and never modify the receiver.
type Stack struct {
	ids []ID
}

// New returns a stack holding ids, bottom first.
func New(ids ...ID) Stack {
	return Stack{ids: append([]ID(nil), ids...)}
}

// Push opens id on top.
func (s Stack) Push(id ID) Stack {
	out := make([]ID, len(s.ids), len(s.ids)+1)
	copy(out, s.ids)
	return Stack{ids: append(out, id)}
}

// Pop closes the top modal. Popping an empty stack is a no-op.
func (s Stack) Pop() Stack {
	if len(s.ids) == 0 {
		return s
	}
	return Stack{ids: append([]ID(nil), s.ids[:len(s.ids)-1]...)}
}

// PopIf closes the top modal only when it is id.
func (s Stack) PopIf(id ID) Stack {
	if s.Top() != id {
		return s
	}
	return s.Pop()
}

// Clear closes every modal.
func (s Stack) Clear() Stack { return Stack{} }

// Top returns the topmost modal, or "" when nothing is open.
func (s Stack) Top() ID {
	if len(s.ids) == 0 {
		return ""
	}
	return s.ids[len(s.ids)-1]
}

// Contains reports whether id is open anywhere in the stack.
func (s Stack) Contains(id ID) bool {
	for _, x := range s.ids {
		if x == id {
			return true
		}
	}
	return false
}

// Len returns the number of open modals.
func (s Stack) Len() int { return len(s.ids) }

// IDs returns a copy of the open modals, bottom first.
func (s Stack) IDs() []ID {
	return append([]ID{}, s.ids...)
}

// MarshalJSON encodes the stack as a bottom-first array.
func (s Stack) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a bottom-first array.
func (s *Stack) UnmarshalJSON(b []byte) error {
	var ids []ID
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = New(ids...)
	return nil
}
