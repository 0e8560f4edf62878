package diag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityOrdering(t *testing.T) {
	assert.Equal(t, SeverityError, Max(SeverityWarning, SeverityError))
	assert.Equal(t, SeverityWarning, Max(SeverityWarning, SeverityHint))
	assert.Equal(t, SeverityNone, Max(SeverityNone, SeverityNone))
}

func TestParseSeverity(t *testing.T) {
	for _, name := range []string{"hint", "info", "warning", "error"} {
		t.Run(name, func(t *testing.T) {
			sev, err := ParseSeverity(name)
			require.NoError(t, err)
			assert.Equal(t, name, sev.String())
		})
	}

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := ParseSeverity("fatal")
		assert.Error(t, err)
	})
}

func TestMapSource(t *testing.T) {
	src := MapSource{
		"/proj/main.go": SeverityError,
	}

	assert.Equal(t, SeverityError, src.Severity("/proj/main.go"))
	assert.Equal(t, SeverityError, src.Severity("/proj//main.go"))
	assert.Equal(t, SeverityNone, src.Severity("/proj/other.go"))
}

func TestLoadFile(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "diag.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"src/main.go": "error",
		"/abs/util.go": "warning"
	}`), 0644))

	src, err := LoadFile(file, "/proj")
	require.NoError(t, err)

	assert.Equal(t, SeverityError, src.Severity("/proj/src/main.go"))
	assert.Equal(t, SeverityWarning, src.Severity("/abs/util.go"))

	t.Run("bad severity fails", func(t *testing.T) {
		bad := filepath.Join(tmp, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"a": "nope"}`), 0644))
		_, err := LoadFile(bad, "/proj")
		assert.Error(t, err)
	})
}
