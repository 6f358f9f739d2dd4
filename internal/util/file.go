package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType sniffs the first 512 bytes of reader and checks the
// detected MIME type against allowedTypes (prefixes like "audio/" or full
// types). Returns the detected type either way.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsAudio reports whether mimeType looks like an audio upload. Browsers
// frequently tag m4a/webm recordings as video containers, so those count too.
func IsAudio(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") ||
		mimeType == "video/webm" || mimeType == "video/mp4"
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}
