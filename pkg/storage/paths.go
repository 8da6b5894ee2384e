package storage

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLength bounds the readable part of a cover filename, in runes
	MaxNameLength = 200

	// MaxNameBytes keeps the name plus ".jpg.part" under the 255-byte
	// filename limit of common filesystems
	MaxNameBytes = 240

	thumbSize = "t_thumb"
	coverSize = "t_cover_big"
)

var unsafeChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_",
)

// NormalizeURL turns a catalog image reference into the URL that is
// downloaded: protocol-relative URLs become https and thumbnails are swapped
// for the large cover size.
func NormalizeURL(imageURL string) string {
	u := strings.TrimSpace(imageURL)
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return strings.ReplaceAll(u, thumbSize, coverSize)
}

// SanitizeFilename makes name safe to use as a file name on common
// filesystems. It does not add an extension.
func SanitizeFilename(name string) string {
	name = unsafeChars.Replace(name)
	name = strings.Join(strings.Fields(name), " ")

	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	if len(name) > MaxNameBytes {
		cut := MaxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	return strings.TrimSpace(name)
}

// FileNameFor derives the cache file name for a resolved image URL. Covers
// with a known platform and title get a readable name, anything else is
// addressed by the MD5 of its URL.
func FileNameFor(resolvedURL, title, platformName string) string {
	if title != "" && platformName != "" {
		return SanitizeFilename(platformName+" - "+title) + ".jpg"
	}

	sum := md5.Sum([]byte(resolvedURL))
	return hex.EncodeToString(sum[:]) + extensionFor(resolvedURL)
}

func extensionFor(u string) string {
	if strings.Contains(strings.ToLower(u), ".png") {
		return ".png"
	}
	return ".jpg"
}
