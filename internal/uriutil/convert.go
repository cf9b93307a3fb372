package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI converts a file system path to a file:// URI.
//   - /home/user/a b.css -> file:///home/user/a%20b.css
//   - C:\proj\a.css -> file:///C:/proj/a.css
//   - \\server\share\a.css -> file://server/share/a.css (UNC, Windows only)
//
// Relative paths are made absolute first.
func PathToURI(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	if runtime.GOOS == "windows" && strings.HasPrefix(absPath, `\\`) {
		unc := filepath.ToSlash(strings.TrimPrefix(absPath, `\\`))
		return "file://" + escapeSegments(unc)
	}

	absPath = filepath.ToSlash(absPath)
	if !strings.HasPrefix(absPath, "/") {
		absPath = "/" + absPath
	}
	return "file://" + escapeSegments(absPath)
}

func escapeSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = url.PathEscape(seg)
		}
	}
	return strings.Join(segments, "/")
}

// URIToPath converts a file:// URI to a file system path, percent-decoding it.
//   - file:///home/user/a%20b.css -> /home/user/a b.css
//   - file:///C:/proj/a.css -> C:\proj\a.css (Windows) or C:/proj/a.css (POSIX)
//
// Strings that don't parse as file URIs are handled leniently by stripping
// the scheme prefix.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return fallbackPath(uri)
	}

	if parsed.Host != "" {
		if runtime.GOOS == "windows" {
			return `\\` + parsed.Host + strings.ReplaceAll(parsed.Path, "/", `\`)
		}
		return parsed.Host + parsed.Path
	}

	return filepath.FromSlash(trimDriveSlash(parsed.Path))
}

func fallbackPath(uri string) string {
	path := uri
	if strings.HasPrefix(path, "file:///") {
		path = path[len("file://"):]
	} else {
		path = strings.TrimPrefix(path, "file://")
	}
	return filepath.FromSlash(trimDriveSlash(path))
}

// trimDriveSlash turns /C:/proj into C:/proj
func trimDriveSlash(path string) string {
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		return path[1:]
	}
	return path
}
