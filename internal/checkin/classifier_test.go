package checkin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultTokens())

	tests := []struct {
		name string
		text string
		want Kind
	}{
		{"simplified daily", "签到", Daily},
		{"traditional daily", "今天簽到了", Daily},
		{"simplified meeting", "畅想会", Meeting},
		{"traditional meeting", "暢想", Meeting},
		{"meeting wins over daily", "签到 暢想", Meeting},
		{"daily then meeting", "簽到畅想", Meeting},
		{"neither", "hello", Invalid},
		{"empty", "", Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyCustomTokens(t *testing.T) {
	c := NewClassifier(Tokens{Meeting: []string{"standup", " "}, Daily: []string{"checkin"}})

	assert.Equal(t, Meeting, c.Classify("standup checkin"))
	assert.Equal(t, Daily, c.Classify("checkin"))
	assert.Equal(t, Invalid, c.Classify("签到"))
	assert.Equal(t, Invalid, c.Classify("   "))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "meeting", Meeting.String())
	assert.Equal(t, "daily", Daily.String())
	assert.Equal(t, "invalid", Invalid.String())
}

func TestLoadTokens(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		tokens, err := LoadTokens("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTokens(), tokens)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.yaml")
		require.NoError(t, os.WriteFile(path, []byte("meeting:\n  - sync\ndaily:\n  - here\n  - 签到\n"), 0o600))

		tokens, err := LoadTokens(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"sync"}, tokens.Meeting)
		assert.Equal(t, []string{"here", "签到"}, tokens.Daily)
	})

	t.Run("empty category", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.yaml")
		require.NoError(t, os.WriteFile(path, []byte("meeting: [sync]\n"), 0o600))

		_, err := LoadTokens(path)
		assert.ErrorContains(t, err, "no daily tokens")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTokens(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
