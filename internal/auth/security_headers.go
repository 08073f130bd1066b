package auth

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	apiCSP   = "default-src 'none'; frame-ancestors 'none'"
	mediaCSP = "default-src 'none'; img-src 'self'; frame-ancestors 'none'"
)

// disabledFeatures are denied to every origin through Permissions-Policy.
var disabledFeatures = []string{
	"accelerometer", "camera", "geolocation", "gyroscope",
	"magnetometer", "microphone", "payment", "usb",
}

func permissionsPolicy() string {
	parts := make([]string, len(disabledFeatures))
	for i, feature := range disabledFeatures {
		parts[i] = feature + "=()"
	}
	return strings.Join(parts, ", ")
}

// SecurityHeadersMiddleware sets response headers for a JSON API. Anything
// under /media/ may render images and stays cacheable.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	static := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "no-referrer",
		"Permissions-Policy":     permissionsPolicy(),
	}

	return func(c *gin.Context) {
		for name, value := range static {
			c.Header(name, value)
		}
		if strings.HasPrefix(c.Request.URL.Path, "/media/") {
			c.Header("Content-Security-Policy", mediaCSP)
		} else {
			c.Header("Content-Security-Policy", apiCSP)
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	}
}

// StrictTransportSecurityMiddleware adds HSTS to requests that arrived over
// HTTPS, directly or behind a proxy.
func StrictTransportSecurityMiddleware(maxAge int) gin.HandlerFunc {
	value := fmt.Sprintf("max-age=%d; includeSubDomains", maxAge)
	return func(c *gin.Context) {
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			c.Header("Strict-Transport-Security", value)
		}
		c.Next()
	}
}
