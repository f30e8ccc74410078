package smf

import (
	"path/filepath"
	"strings"
)

// Extensions lists the file extensions recognised as Standard MIDI Files.
var Extensions = []string{".mid", ".midi", ".smf", ".kar"}

// HasExtension reports whether filename carries an SMF extension.
func HasExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsSMF reports whether data starts with the "MThd" signature.
func IsSMF(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == HeaderTag
}
