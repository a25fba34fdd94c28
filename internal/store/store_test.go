package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/relnotes/internal/changelog"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	q, err := Open(t.TempDir(), "test.sqlite3", "22")
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func TestTableName(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		version string
		want    string
	}{
		"major version":     {version: "22", want: "changelog_lines_v22"},
		"dotted version":    {version: "18.0", want: "changelog_lines_v18_0"},
		"hostile input":     {version: "22; DROP TABLE x", want: "changelog_lines_v22DROPTABLEx"},
		"alphanumeric kept": {version: "22beta", want: "changelog_lines_v22beta"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tableName(tt.version))
		})
	}
}

func TestInsertLine_Deduplicates(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)

	id, created, err := q.InsertLine("FIX: Crash on save (#12)", changelog.AudienceUser)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Positive(t, id)

	// Same content again: silently ignored.
	_, created, err = q.InsertLine("FIX: Crash on save (#12)", changelog.AudienceUser)
	require.NoError(t, err)
	assert.False(t, created)

	pending, _, _, err := q.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestInsertLine_UnknownAudienceStoredAsNull(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)

	id, created, err := q.InsertLine("orphan line", changelog.AudienceUnknown)
	require.NoError(t, err)
	require.True(t, created)

	entry, err := q.get(id)
	require.NoError(t, err)
	assert.Equal(t, changelog.AudienceUnknown, entry.Audience)
}

func TestPendingLines(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)

	_, _, err := q.InsertLine("user line", changelog.AudienceUser)
	require.NoError(t, err)
	id2, _, err := q.InsertLine("dev line", changelog.AudienceDev)
	require.NoError(t, err)
	_, _, err = q.InsertLine("another dev line", changelog.AudienceDev)
	require.NoError(t, err)

	t.Run("ordered by audience", func(t *testing.T) {
		entries, err := q.PendingLines(0, false)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		// "dev" sorts before "user".
		assert.Equal(t, changelog.AudienceDev, entries[0].Audience)
		assert.Equal(t, changelog.AudienceUser, entries[2].Audience)
	})

	t.Run("limit respected", func(t *testing.T) {
		entries, err := q.PendingLines(2, false)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("terminal entries excluded", func(t *testing.T) {
		require.NoError(t, q.MarkNotSupported(id2, "no PR found", ""))

		entries, err := q.PendingLines(0, false)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		for _, e := range entries {
			assert.NotEqual(t, id2, e.ID)
		}
	})
}

func TestMarkDone(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)
	id, _, err := q.InsertLine("FIX: something (#12)", changelog.AudienceUser)
	require.NoError(t, err)

	outcome := Outcome{
		PRDescription: "PR title: Fix\n\nPR description:\nDetails",
		PRLink:        "https://github.com/dolibarr/dolibarr/pull/12",
		PRDiff:        "diff --git",
		TokenCount:    138,
	}
	require.NoError(t, q.MarkDone(id, outcome))

	entry, err := q.get(id)
	require.NoError(t, err)
	assert.True(t, entry.IsDone)
	assert.False(t, entry.NotSupported)
	assert.Equal(t, outcome.PRDescription, entry.PRDescription)
	assert.Equal(t, outcome.PRLink, entry.PRLink)
	assert.Equal(t, outcome.PRDiff, entry.PRDiff)
	assert.Equal(t, int64(138), entry.TokenCount)
}

func TestMarkNotSupported(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)

	t.Run("reason only", func(t *testing.T) {
		id, _, err := q.InsertLine("line one", changelog.AudienceUser)
		require.NoError(t, err)
		require.NoError(t, q.MarkNotSupported(id, "no PR found", ""))

		entry, err := q.get(id)
		require.NoError(t, err)
		assert.True(t, entry.NotSupported)
		assert.False(t, entry.IsDone)
		assert.Equal(t, "no PR found", entry.NotSupportedReason)
		assert.Empty(t, entry.PRLink)
	})

	t.Run("link recorded when diff was unavailable", func(t *testing.T) {
		id, _, err := q.InsertLine("line two", changelog.AudienceDev)
		require.NoError(t, err)
		require.NoError(t, q.MarkNotSupported(id, "diff unavailable for PR #12", "https://github.com/dolibarr/dolibarr/pull/12"))

		entry, err := q.get(id)
		require.NoError(t, err)
		assert.True(t, entry.NotSupported)
		assert.Equal(t, "https://github.com/dolibarr/dolibarr/pull/12", entry.PRLink)
	})
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)

	doneID, _, err := q.InsertLine("done line", changelog.AudienceUser)
	require.NoError(t, err)
	require.NoError(t, q.MarkDone(doneID, Outcome{}))

	nsID, _, err := q.InsertLine("unsupported line", changelog.AudienceUser)
	require.NoError(t, err)
	require.NoError(t, q.MarkNotSupported(nsID, "reason", ""))

	assert.ErrorIs(t, q.MarkDone(doneID, Outcome{}), ErrTerminal)
	assert.ErrorIs(t, q.MarkNotSupported(doneID, "again", ""), ErrTerminal)
	assert.ErrorIs(t, q.MarkDone(nsID, Outcome{}), ErrTerminal)
	assert.ErrorIs(t, q.MarkNotSupported(nsID, "again", ""), ErrTerminal)

	// Never both done and not-supported.
	entry, err := q.get(doneID)
	require.NoError(t, err)
	assert.True(t, entry.IsDone)
	assert.False(t, entry.NotSupported)
}

func TestTransition_MissingEntry(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)
	assert.ErrorIs(t, q.MarkDone(12345, Outcome{}), ErrNotFound)
}

func TestCounts(t *testing.T) {
	t.Parallel()

	q := newTestQueue(t)

	_, _, err := q.InsertLine("pending", changelog.AudienceUser)
	require.NoError(t, err)
	doneID, _, err := q.InsertLine("done", changelog.AudienceUser)
	require.NoError(t, err)
	nsID, _, err := q.InsertLine("unsupported", changelog.AudienceDev)
	require.NoError(t, err)

	require.NoError(t, q.MarkDone(doneID, Outcome{}))
	require.NoError(t, q.MarkNotSupported(nsID, "reason", ""))

	pending, done, notSupported, err := q.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, notSupported)
}

func TestOpen_SeparateVersionsSeparateTables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	q22, err := Open(dir, "shared.sqlite3", "22")
	require.NoError(t, err)
	defer q22.Close()

	q21, err := Open(dir, "shared.sqlite3", "21")
	require.NoError(t, err)
	defer q21.Close()

	_, created, err := q22.InsertLine("same content", changelog.AudienceUser)
	require.NoError(t, err)
	require.True(t, created)

	// The same content is new in the other version's queue.
	_, created, err = q21.InsertLine("same content", changelog.AudienceUser)
	require.NoError(t, err)
	assert.True(t, created)

	pending22, _, _, err := q22.Counts()
	require.NoError(t, err)
	assert.Equal(t, 1, pending22)
}
