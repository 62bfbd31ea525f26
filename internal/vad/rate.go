package vad

// ValidRate reports whether WebRTC VAD supports the sample rate
func ValidRate(rate int) bool {
	switch rate {
	case 8000, 16000, 32000, 48000:
		return true
	}
	return false
}
