package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DescribeUserAgent turns a raw User-Agent header into the short device label
// stored on a session, e.g. "Chrome 120.0 on Windows 10 (desktop)".
func DescribeUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "unknown"
	}

	parser := ua.New(raw)
	if parser.Bot() {
		name, _ := parser.Browser()
		return "bot " + name
	}

	browser, version := parser.Browser()
	if browser == "" {
		browser = "Unknown"
	}
	if version != "" {
		browser += " " + version
	}

	os := parser.OSInfo().Name
	if v := parser.OSInfo().Version; v != "" {
		os += " " + v
	}
	if os == "" {
		os = "Unknown"
	}

	device := "desktop"
	if parser.Mobile() {
		device = "mobile"
	}

	return browser + " on " + os + " (" + device + ")"
}
