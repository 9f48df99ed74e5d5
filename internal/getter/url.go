package getter

import (
	"net/url"
	"path"
	"strings"
)

// remoteSchemes are URL schemes and forced-getter prefixes that always mean
// a remote source.
var remoteSchemes = []string{"http", "https", "git", "hg", "s3", "gcs", "ssh"}

// remoteHosts are host prefixes go-getter detects without a scheme.
var remoteHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/", "git@"}

// IsRemote reports whether src names a remote go-getter source rather than
// a local path.
func IsRemote(src string) bool {
	// Forced getter, e.g. "git::https://..." or "s3::...".
	if forced, _, ok := strings.Cut(src, "::"); ok && !strings.ContainsAny(forced, "/\\") {
		return true
	}

	if scheme, _, ok := strings.Cut(src, "://"); ok {
		for _, s := range remoteSchemes {
			if strings.EqualFold(scheme, s) {
				return true
			}
		}
	}

	for _, h := range remoteHosts {
		if strings.HasPrefix(src, h) {
			return true
		}
	}

	return false
}

// FileName picks a local file name for a remote source, keeping its
// extension so that the schema engine can be chosen from it.
//
//	FileName("github.com/acme/lab//schemas/boards.yaml?ref=v1") → "boards.yaml"
func FileName(src string) string {
	if _, rest, ok := strings.Cut(src, "::"); ok {
		src = rest
	}

	src, _, _ = strings.Cut(src, "?")

	if u, err := url.Parse(src); err == nil && u.Path != "" {
		src = u.Path
	}

	name := path.Base(strings.TrimRight(src, "/"))
	if name == "." || name == "/" || name == "" {
		return "schema.yaml"
	}

	return name
}

// SourceURL adds ref and checksum query parameters to a source URL.
func SourceURL(src string, opts FetchOpts) string {
	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}

	result := src

	if opts.Ref != "" {
		result += sep + "ref=" + opts.Ref
		sep = "&"
	}

	if opts.Checksum != "" {
		result += sep + "checksum=sha256:" + opts.Checksum
	}

	return result
}
