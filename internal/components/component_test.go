package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase(t *testing.T) {
	t.Run("zero value is unfocused and unsized", func(t *testing.T) {
		var b Base
		w, h := b.Size()
		assert.Equal(t, 0, w)
		assert.Equal(t, 0, h)
		assert.False(t, b.Focused())
	})

	t.Run("Focus and Blur toggle state", func(t *testing.T) {
		var b Base

		b.Focus()
		assert.True(t, b.Focused())

		b.Blur()
		assert.False(t, b.Focused())
	})

	t.Run("SetSize updates dimensions", func(t *testing.T) {
		var b Base
		b.SetSize(200, 100)

		w, h := b.Size()
		assert.Equal(t, 200, w)
		assert.Equal(t, 100, h)
	})
}
