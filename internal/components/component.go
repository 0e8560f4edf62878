// Package components holds the shared plumbing for arbor's UI panels.
package components

// Component is the contract every panel implements on top of its
// bubbletea model: focus management and sizing.
type Component interface {
	// Focused returns whether this component currently has focus
	Focused() bool

	// Size returns the component's current dimensions
	Size() (width, height int)
}

// Base provides common functionality for panels. Embed it to get default
// focus and size handling.
type Base struct {
	focused bool
	width   int
	height  int
}

// Focus sets the focused state to true.
func (b *Base) Focus() {
	b.focused = true
}

// Blur sets the focused state to false.
func (b *Base) Blur() {
	b.focused = false
}

// Focused returns the current focus state.
func (b Base) Focused() bool {
	return b.focused
}

// SetSize updates the component's dimensions.
func (b *Base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// Size returns the component's current dimensions.
func (b Base) Size() (width, height int) {
	return b.width, b.height
}
