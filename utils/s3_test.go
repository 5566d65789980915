package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake-jpeg"))

	img, err := ParseDataURI("data:image/jpeg;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.ContentType)
	assert.Equal(t, ".jpg", img.Ext)
	assert.Equal(t, []byte("fake-jpeg"), img.Data)

	img, err = ParseDataURI("data:image/png;base64," + payload)
	require.NoError(t, err)
	assert.Equal(t, ".png", img.Ext)
}

func TestParseDataURIRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"not a uri",
		"data:image/png;base64,",
		"data:image/png;base64,!!!",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,aGVsbG8=",
	} {
		_, err := ParseDataURI(raw)
		assert.ErrorIs(t, err, ErrInvalidDataURI, raw)
	}
}
