package cli

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SaveHistory_Replaces_File_When_Written(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	err := saveHistory(path, func(w io.Writer) (int, error) {
		_, err := io.WriteString(w, "insert a\nls\n")

		return 2, err
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "insert a\nls\n", string(got))
}

func Test_SaveHistory_Keeps_Old_File_When_Render_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	boom := errors.New("boom")

	err := saveHistory(path, func(io.Writer) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(got))
}

func Test_Completer_Matches_Command_Prefix(t *testing.T) {
	t.Parallel()

	assert.Empty(t, cmp.Diff([]string{"remove", "rev", "retain", "reserve"}, completer("re")))
	assert.Empty(t, completer("zz"))
}

func Test_Session_Clear_Forgets_Issued_Keys(t *testing.T) {
	t.Parallel()

	s, err := newSession("sparse", "default")
	require.NoError(t, err)

	o := NewIO(io.Discard, io.Discard)

	_, err = s.exec(o, "insert a")
	require.NoError(t, err)

	_, err = s.exec(o, "clear")
	require.NoError(t, err)

	_, err = s.exec(o, "get 0v1")
	require.ErrorIs(t, err, ErrUnknownKey)

	quit, err := s.exec(o, "quit")
	require.NoError(t, err)
	assert.True(t, quit)
}
