package util

import (
	"fmt"
	"net/url"
	"strings"

	"mediafetch/internal/model"
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformOther     Platform = "other"
)

// Label is a display name used in delivery metadata.
func (p Platform) Label() string {
	switch p {
	case PlatformYouTube:
		return "YouTube"
	case PlatformInstagram:
		return "Instagram"
	default:
		return "Web"
	}
}

// ValidateURL parses raw as an absolute http(s) URL. A missing scheme is
// assumed to be https. yt-dlp supports far more sites than we can list,
// so the host is not checked against an allow-list.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err == nil && (u.Scheme == "" || u.Host == "") {
		if u2, e2 := url.Parse("https://" + raw); e2 == nil {
			u = u2
		}
	}
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q (only http and https are supported)", model.ErrInvalidURL, raw)
	}
	return u, nil
}

// DetectPlatform classifies a validated URL by host.
func DetectPlatform(u *url.URL) Platform {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return PlatformYouTube
	case "instagram.com", "instagr.am", "m.instagram.com":
		return PlatformInstagram
	default:
		return PlatformOther
	}
}
