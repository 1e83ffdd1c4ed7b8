package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consatan/weibo-image-uploader/internal/app"
)

func TestNewWireFileBackend(t *testing.T) {
	w, err := app.NewWire(app.Config{Home: t.TempDir(), Secure: true})
	require.NoError(t, err)

	assert.NotNil(t, w.Cache)
	assert.NotNil(t, w.Sessions)
	assert.NotNil(t, w.Challenges)
	assert.NotNil(t, w.Transport)
	assert.NotNil(t, w.Auth)
	assert.NotNil(t, w.Uploads)

	// file backend holds no external connections
	require.NoError(t, w.Close())
}

func TestNewBuildsFacadeFromWire(t *testing.T) {
	w, err := app.NewWire(app.Config{Home: t.TempDir(), Secure: true})
	require.NoError(t, err)

	a := app.New(w)
	assert.Equal(t, w.Auth, a.Auth)
	assert.Equal(t, w.Uploads, a.Uploads)
	assert.Equal(t, w.Sessions, a.Sessions)
	assert.Equal(t, w.Challenges, a.Challenges)
}
