package credentials

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	in := Credentials{
		Email:    "student@binus.ac.id",
		Password: "s3cret!",
		CSVPath:  "/home/student/logbook.csv",
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestStore_PasswordNotStoredInPlaintext(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(Credentials{Email: "a@b.c", Password: "hunter2"}))

	raw, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	var ff fileFormat
	require.NoError(t, json.Unmarshal(raw, &ff))
	assert.NotEmpty(t, ff.Password)
	assert.NotEqual(t, "hunter2", ff.Password)
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load()
	assert.True(t, os.IsNotExist(err))
}

func TestStore_EmptyPasswordSkipsEncryption(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(Credentials{Email: "a@b.c", CSVPath: "x.csv"}))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, out.Password)
	assert.Equal(t, "a@b.c", out.Email)

	// no key material should have been created
	_, err = os.Stat(store.secretPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(Credentials{Email: "a@b.c", Password: "pw"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.True(t, os.IsNotExist(err))

	// clearing twice is fine
	assert.NoError(t, store.Clear())
}

func TestStore_CorruptCiphertext(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(Credentials{Password: "pw"}))

	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	var ff fileFormat
	require.NoError(t, json.Unmarshal(data, &ff))
	ff.Password = "bm90IGEgcmVhbCBjaXBoZXJ0ZXh0"
	data, err = json.Marshal(ff)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.path, data, 0o600))

	_, err = store.Load()
	assert.Error(t, err)
}
