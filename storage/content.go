package storage

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is reported when neither the backend nor sniffing
// identifies the content.
const DefaultContentType = "application/octet-stream"

// DetectContentType returns the backend-reported type unless it is empty or
// generic, in which case the body is sniffed with mimetype.
func DetectContentType(reported string, data []byte) string {
	reported = strings.TrimSpace(reported)
	if reported != "" && !strings.HasPrefix(reported, DefaultContentType) && !strings.HasPrefix(reported, "binary/octet-stream") {
		return reported
	}
	if len(data) == 0 {
		return DefaultContentType
	}
	if mt := mimetype.Detect(data); mt != nil {
		return mt.String()
	}
	return DefaultContentType
}
