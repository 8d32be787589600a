package utils

import (
	"path/filepath"
	"strings"
)

// AudioTemplate is the yt-dlp output template for forced downloads under dir
func AudioTemplate(dir string) string {
	return filepath.Join(dir, "%(id)s.%(ext)s")
}

// GetAudioID returns the video ID a cached audio file was stored under
func GetAudioID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
