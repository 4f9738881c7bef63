package model

import "regexp"

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ExtractVideoID pulls the 11-character YouTube ID out of any of the common
// URL shapes. A value that is already a bare ID, or anything unrecognized,
// yields "".
func ExtractVideoID(url string) string {
	if url == "" {
		return ""
	}
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m != nil && len(m[2]) == 11 {
		return m[2]
	}
	return ""
}
