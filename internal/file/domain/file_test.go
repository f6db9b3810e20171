package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	cases := []struct {
		fileName string
		want     string
	}{
		{"report.PDF", "7/files/1700000000123-abcdefghij.pdf"},
		{"archive.tar.gz", "7/files/1700000000123-abcdefghij.gz"},
		{"README", "7/files/1700000000123-abcdefghij.bin"},
		{"weird.p$f", "7/files/1700000000123-abcdefghij.bin"},
		{"trailing.", "7/files/1700000000123-abcdefghij.bin"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BuildKey(7, tc.fileName, now, "abcdefghij"), tc.fileName)
	}
}

func TestParseFileType(t *testing.T) {
	for _, raw := range []string{"report", "Screenshot", " document ", "other"} {
		_, err := ParseFileType(raw)
		assert.NoError(t, err, raw)
	}
	_, err := ParseFileType("video")
	assert.Error(t, err)
}

func TestValidateFileName(t *testing.T) {
	assert.NoError(t, ValidateFileName("a.txt"))
	assert.ErrorIs(t, ValidateFileName(""), ErrInvalidFileName)
	assert.ErrorIs(t, ValidateFileName(strings.Repeat("x", 256)), ErrInvalidFileName)
	assert.NoError(t, ValidateFileName(strings.Repeat("é", 255)))
}
