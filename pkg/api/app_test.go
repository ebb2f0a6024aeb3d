package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiErrors "github.com/wavesplatform/gomarket/pkg/api/errors"
)

func TestAppAuth(t *testing.T) {
	app, err := NewApp("apiKey", nil, nil, nil, nil)
	require.NoError(t, err)
	require.Error(t, app.checkAuth("bla"))
	require.NoError(t, app.checkAuth("apiKey"))

	app, err = NewApp("", nil, nil, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, app.checkAuth(""), apiErrors.ErrAPIKeyDisabled)
}
