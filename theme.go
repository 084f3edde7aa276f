package converse

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Transcript int // Transcript heading
	Response   int // Response heading
	Recording  int // Recording indicator
	Error      int // Failure notifications
	Success    int // Playback indicator
	Muted      int // Status bar, placeholders
	Accent     int // Title, markdown headings and links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Transcript: 4,
		Response:   5,
		Recording:  1,
		Error:      1,
		Success:    2,
		Muted:      8,
		Accent:     5,
	}
}
