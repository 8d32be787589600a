package voice

import (
	"math"
	"strings"
)

const (
	sampleRate = 48000
	channels   = 2
	// frameSize is the number of samples per channel in a 20ms frame
	frameSize   = 960
	frameBytes  = frameSize * channels * 2
	maxOpusSize = 4000
)

// applyVolume decodes s16le PCM into out scaled by volume, clamping to the int16 range
func applyVolume(pcm []byte, out []int16, volume float64) {
	for i := 0; i+1 < len(pcm) && i/2 < len(out); i += 2 {
		sample := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		if volume == 1 {
			out[i/2] = sample
			continue
		}

		scaled := math.Round(float64(sample) * volume)
		switch {
		case scaled > math.MaxInt16:
			scaled = math.MaxInt16
		case scaled < math.MinInt16:
			scaled = math.MinInt16
		}
		out[i/2] = int16(scaled)
	}
}

// ffmpegArgs builds the decode command line for a stream URL or local file
func ffmpegArgs(input string) []string {
	var args []string
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-loglevel", "error",
		"-i", input,
		"-vn",
		"-f", "s16le",
		"-ar", "48000",
		"-ac", "2",
		"pipe:1",
	)
}
