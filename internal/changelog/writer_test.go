package changelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLines(t *testing.T) {
	t.Parallel()

	t.Run("writes lines with trailing newline", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "changelog_v22.txt")
		written, err := SaveLines([]string{"first", "second"}, path)
		require.NoError(t, err)
		assert.True(t, written)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\n", string(content))
	})

	t.Run("empty input writes nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "changelog_v22.txt")
		written, err := SaveLines(nil, path)
		require.NoError(t, err)
		assert.False(t, written)
		assert.NoFileExists(t, path)
	})
}

func TestAppendText(t *testing.T) {
	t.Parallel()

	t.Run("creates file and parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "summaries_v22.txt")
		written, err := AppendText("aggregated log", path)
		require.NoError(t, err)
		assert.True(t, written)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "aggregated log", string(content))
	})

	t.Run("successive batches accumulate", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "summaries_v22.txt")
		for _, block := range []string{"batch one\n", "batch two\n"} {
			written, err := AppendText(block, path)
			require.NoError(t, err)
			assert.True(t, written)
		}

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "batch one\nbatch two\n", string(content))
	})

	t.Run("empty text writes nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "summaries_v22.txt")
		written, err := AppendText("", path)
		require.NoError(t, err)
		assert.False(t, written)
		assert.NoFileExists(t, path)
	})
}

func TestFilePaths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("data", "changelog_v22.txt"), SectionFilePath("data", "22"))
	assert.Equal(t, filepath.Join("data", "summaries_v22.txt"), SummaryFilePath("data", "22"))
}
