package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDataURL(t *testing.T) {
	mediaType, payload, err := SplitDataURL("data:image/jpeg;base64,iVBORw==")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, "iVBORw==", payload)

	mediaType, _, err = SplitDataURL("data:;base64,iVBORw==")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediaType)
}

func TestSplitDataURL_Invalid(t *testing.T) {
	tests := []string{
		"https://example.com/cat.png",
		"data:image/png;base64",
		"data:image/png,plain",
		"data:image/png;base64,!!!",
	}
	for _, url := range tests {
		_, _, err := SplitDataURL(url)
		assert.Error(t, err, url)
	}
}
