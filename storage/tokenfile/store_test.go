package tokenfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
)

func TestTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "masomo", "token")
	s := New(path)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token, "missing file means no token")

	require.NoError(t, s.SetToken("abc.def.ghi"))
	token, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// a second store on the same file sees the same token
	token, err = New(path).Token()
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	require.NoError(t, s.Clear())
	token, err = s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	assert.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestTokenStore_Credential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := New(path)

	cred := core.Credential{Token: "opaque-abc123", Role: "admin", Name: "Grace Admin", Email: "admin@school.test"}
	require.NoError(t, s.SetCredential(cred))

	got, err := New(path).Credential()
	require.NoError(t, err)
	assert.Equal(t, cred, got)

	token, err := New(path).Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-abc123", token, "only the bearer token")

	require.NoError(t, os.WriteFile(path, []byte("abc.def.ghi\n"), 0o600))
	got, err = s.Credential()
	require.NoError(t, err)
	assert.Equal(t, core.Credential{Token: "abc.def.ghi"}, got, "bare token files are still read")

	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))
	_, err = s.Credential()
	assert.Error(t, err)

	require.NoError(t, s.Clear())
	got, err = s.Credential()
	require.NoError(t, err)
	assert.Empty(t, got)
}
