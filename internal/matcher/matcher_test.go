package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/shotwatch/pkg/errors"
)

func TestDetectPatternType(t *testing.T) {
	tests := []struct {
		pattern string
		want    PatternType
	}{
		{"*.png", Glob},
		{"shot?.jpg", Glob},
		{"[0-9]*.png", Glob},
		{"photo.jpg", Glob},
		{`^\d{4}-.*\.png$`, Regex},
		{"(png|jpg)$", Regex},
		{"a+b", Regex},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, detectPatternType(tt.pattern))
		})
	}
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		name        string
		patternType PatternType
		pattern     string
		fold        bool
		input       string
		want        bool
	}{
		{"glob ext", Glob, "*.png", false, "shot1.png", true},
		{"glob other ext", Glob, "*.png", false, "photo.jpg", false},
		{"glob case sensitive", Glob, "*.png", false, "SHOT.PNG", false},
		{"glob case folded", Glob, "*.png", true, "SHOT.PNG", true},
		{"regex", Regex, `^\d{4}-\d{2}-\d{2}\[.*\]\.png$`, false, "2024-05-01[12-00]_pos.png", false},
		{"regex date prefix", Regex, `^\d{4}-\d{2}-\d{2}`, false, "2024-05-01[12-00]_pos.png", true},
		{"regex folded", Regex, `\.jpe?g$`, true, "PHOTO.JPG", true},
		{"auto glob", Auto, "shot*", false, "shot1.png", true},
		{"auto regex", Auto, "(png|jpg)$", false, "photo.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern, &Options{CaseInsensitive: tt.fold})
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.input))
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Glob, "[", nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = New(Regex, "(", nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = New(PatternType(42), "*", nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestSet(t *testing.T) {
	t.Run("empty set matches everything", func(t *testing.T) {
		s, err := NewSet(nil)
		require.NoError(t, err)
		assert.True(t, s.Match("anything.bin"))

		var nilSet *Set
		assert.True(t, nilSet.Match("anything.bin"))
	})

	t.Run("any pattern matches", func(t *testing.T) {
		s, err := NewSet([]string{"*.png", " ", `\.jpe?g$`})
		require.NoError(t, err)
		assert.Equal(t, []string{"*.png", `\.jpe?g$`}, s.Patterns())

		assert.True(t, s.Match("shot1.png"))
		assert.True(t, s.Match("Photo.JPEG"))
		assert.False(t, s.Match("notes.txt"))
	})

	t.Run("every invalid pattern is reported", func(t *testing.T) {
		_, err := NewSet([]string{"[", "*.png", "("})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid glob")
		assert.Contains(t, err.Error(), "invalid regex")
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"*.png", " *.jpg"}, SplitList("*.png, *.jpg"))
	assert.Equal(t, []string{"a", "b"}, SplitList("a;b"))
	assert.Empty(t, SplitList(""))
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(9).String())
}
