package imageurl

import (
	"fmt"
	"hash/crc32"
	"regexp"
	"strings"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// Size variant tags accepted by the image bed.
const (
	SizeLarge     = "large"
	SizeSmall     = "small"
	SizeSquare    = "square"
	SizeMiddle    = "bmiddle"
	SizeOriginal  = "large"
	SizeBMiddle   = "bmiddle"
	SizeThumbnail = "thumbnail"
	SizeThumb180  = "thumb180"
	SizeMW690     = "mw690"
	SizeMW1024    = "mw1024"
)

// sizePaths maps accepted size tags (including legacy aliases) to the path
// segment actually used in delivery URLs.
var sizePaths = map[string]string{
	"mw690":     "mw690",
	"large":     "large",
	"small":     "small",
	"square":    "square",
	"mw1024":    "mw1024",
	"middle":    "bmiddle",
	"orignal":   "large",
	"bmiddle":   "bmiddle",
	"thumb180":  "thumb180",
	"thumbnail": "thumbnail",
}

var (
	pidPattern = regexp.MustCompile(`^[a-zA-Z0-9]{32}$`)
	urlPattern = regexp.MustCompile(`(?i)^(https?://[a-z]{2}\d\.sinaimg\.cn/)` +
		`(large|bmiddle|mw1024|mw690|small|square|thumb180|thumbnail)` +
		`(/[a-z0-9]{32}\.(jpg|gif))$`)
)

// KnownSize reports whether tag (case-insensitive) is an accepted size tag.
func KnownSize(tag string) bool {
	_, ok := sizePaths[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// SizePath returns the URL path segment for tag, falling back to the default
// size for unrecognized tags. Resolution never fails on the size alone.
func SizePath(tag string) string {
	if p, ok := sizePaths[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return p
	}
	return SizeLarge
}

// Resolve maps a pid, or an existing delivery URL, to the delivery URL for
// the requested size. For a pid it builds the full URL: the CDN shard is
// (crc32(pid) & 3) + 1 and the extension is gif when pid[21] == 'g'. For a
// URL only the size path segment is rewritten; scheme, host, shard and
// filename are preserved. secure selects https ("ws" hosts) over http ("ww"
// hosts) in the pid case only.
//
// The shard formula is kept for URL compatibility with the upstream
// publisher script; in practice any shard serves the same content.
func Resolve(pidOrURL, size string, secure bool) (string, error) {
	in := strings.TrimSpace(pidOrURL)
	sizePath := SizePath(size)

	if pidPattern.MatchString(in) {
		scheme, hostPrefix := "http", "ww"
		if secure {
			scheme, hostPrefix = "https", "ws"
		}
		shard := (crc32.ChecksumIEEE([]byte(in)) & 3) + 1
		ext := "jpg"
		if in[21] == 'g' {
			ext = "gif"
		}
		return fmt.Sprintf("%s://%s%d.sinaimg.cn/%s/%s.%s", scheme, hostPrefix, shard, sizePath, in, ext), nil
	}

	m := urlPattern.FindStringSubmatch(in)
	if m == nil {
		return "", domain.NewError(domain.CodeInvalidInput, "invalid pid or image URL: "+pidOrURL)
	}
	return m[1] + sizePath + m[3], nil
}
