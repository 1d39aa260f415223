package engine

import (
	"fmt"
	"strings"
)

// Classification is the user-facing reading of an opaque resolver failure.
type Classification struct {
	Message string
	// Details carries remediation guidance, independent of the message.
	Details string
	// BotChallenge is distinguished so the probe handler can answer 403
	// instead of a plain extraction failure.
	BotChallenge bool
}

// Classify pattern-matches the resolver's raw failure text against known
// substrings. The resolver exposes no structured error codes, so this is the
// single place where the matching rules live.
func Classify(raw string) Classification {
	msg := strings.ToLower(raw)

	switch {
	case strings.Contains(msg, "sign in to confirm you're not a bot"),
		strings.Contains(msg, "sign in to confirm you’re not a bot"):
		return Classification{
			Message:      "The video site is asking for a sign-in to confirm you're not a bot.",
			Details:      "Export browser cookies for the site and point resolver.cookies_file at them, then try again.",
			BotChallenge: true,
		}
	case strings.Contains(msg, "unsupported url"):
		return Classification{Message: "Unsupported URL. Please ensure it's a valid video page."}
	case strings.Contains(msg, "this video is private"):
		return Classification{Message: "This video is private and cannot be accessed."}
	case strings.Contains(msg, "video is unavailable"):
		return Classification{Message: "This video is unavailable."}
	case strings.Contains(msg, "geo-restricted"),
		strings.Contains(msg, "region-restricted"),
		strings.Contains(msg, "not available in your country"):
		return Classification{Message: "This video is geo-restricted and not available in your region."}
	case strings.Contains(msg, "unable to extract video data"),
		strings.Contains(msg, "unable to extract"):
		return Classification{Message: "Could not extract video data. The video might be private, deleted, or the URL is incorrect."}
	default:
		return Classification{Message: fmt.Sprintf("Download failed: %s", raw)}
	}
}
