// Package device classifies the host device from its user agent.
package device

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	mobileRe = regexp.MustCompile(`(?i)Mobi|Android`)
	tabletRe = regexp.MustCompile(`(?i)Tablet|iPad`)
)

// Info describes the host device.
type Info struct {
	IsMobile  bool   `json:"isMobile"`
	IsTablet  bool   `json:"isTablet"`
	IsDesktop bool   `json:"isDesktop"`
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`
}

// Navigator exposes the identification strings of a browser-like host.
type Navigator interface {
	UserAgent() string
	Platform() string
}

// Classify derives device information from a user agent and platform string.
//
// Matching is by pattern only: a user agent containing "Mobi" or "Android" is
// mobile, one containing "Tablet" or "iPad" is a tablet, and anything that is
// neither is a desktop. An Android tablet matches both.
func Classify(userAgent, platform string) Info {
	isMobile := mobileRe.MatchString(userAgent)
	isTablet := tabletRe.MatchString(userAgent)

	return Info{
		IsMobile:  isMobile,
		IsTablet:  isTablet,
		IsDesktop: !isMobile && !isTablet,
		UserAgent: userAgent,
		Platform:  platform,
	}
}

// Detect reads the navigator once and classifies it. A nil navigator yields
// the zero Info.
func Detect(nav Navigator) Info {
	if nav == nil {
		return Info{}
	}

	return Classify(nav.UserAgent(), nav.Platform())
}

// FromRequest classifies the client of an HTTP request using the User-Agent
// header and the Sec-CH-UA-Platform client hint.
func FromRequest(r *http.Request) Info {
	platform := strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`)

	return Classify(r.UserAgent(), platform)
}
