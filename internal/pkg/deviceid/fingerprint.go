// internal/pkg/deviceid/fingerprint.go
package deviceid

import (
	"strings"

	"tably-service/internal/domain/device"
)

// Fingerprint derives descriptive traits from a user-agent string. Pure and
// side-effect free. The result is display/audit material ("Chrome Browser",
// "iPhone"), never an authorization factor.
func Fingerprint(userAgent string) device.Fingerprint {
	ua := strings.ToLower(userAgent)

	fp := device.Fingerprint{
		Browser:     "Unknown Browser",
		Platform:    "Unknown",
		DeviceClass: "desktop",
	}

	switch {
	case strings.Contains(ua, "edg/"):
		fp.Browser = "Edge"
	case strings.Contains(ua, "firefox/"):
		fp.Browser = "Firefox"
	case strings.Contains(ua, "chrome/"):
		fp.Browser = "Chrome"
	case strings.Contains(ua, "safari/"):
		fp.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "iphone"):
		fp.Platform = "iPhone"
		fp.DeviceClass = "mobile"
	case strings.Contains(ua, "ipad"):
		fp.Platform = "iPad"
		fp.DeviceClass = "tablet"
	case strings.Contains(ua, "android"):
		fp.Platform = "Android"
		fp.DeviceClass = "mobile"
	case strings.Contains(ua, "windows"):
		fp.Platform = "Windows"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os"):
		fp.Platform = "macOS"
	case strings.Contains(ua, "linux"):
		fp.Platform = "Linux"
	}

	fp.Traits = []string{fp.Browser, fp.Platform, fp.DeviceClass}
	return fp
}

// DisplayName builds the default human-readable device label.
func DisplayName(fp device.Fingerprint) string {
	if fp.Platform == "Unknown" {
		return fp.Browser
	}
	return fp.Browser + " on " + fp.Platform
}
