package lsp

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"csspeek.dev/cpls/internal/cache"
	"csspeek.dev/cpls/internal/log"
	"csspeek.dev/cpls/internal/uriutil"
	"csspeek.dev/cpls/lsp/types"
	"github.com/bmatcuk/doublestar/v4"
)

// shouldSkipDirectory checks if a directory should be skipped during discovery.
// Returns true for hidden directories and installed dependencies.
func shouldSkipDirectory(d fs.DirEntry) bool {
	if !d.IsDir() {
		return false
	}
	name := d.Name()
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// matchesAnyPattern checks if a file path matches any of the given glob patterns
func matchesAnyPattern(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(relPath))
		if err == nil && matched {
			return true
		}
	}
	return false
}

// DiscoverStylesheets walks root and returns every stylesheet that
// config does not exclude, in walk order.
func DiscoverStylesheets(root string, config types.ServerConfig) ([]cache.File, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory is required")
	}

	var files []cache.File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped; the walk continues
			return nil
		}
		if path != root && shouldSkipDirectory(d) {
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !matchesAnyPattern(relPath, types.StylesheetPatterns) || config.Excludes(relPath, "") {
			return nil
		}

		files = append(files, cache.File{URI: uriutil.PathToURI(path), FSPath: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}

// LoadStylesheets seeds the stylesheet cache. When files is nil the
// stylesheets are discovered under the workspace root. Files that
// cannot be read are reported together and do not stop the others.
func (s *Server) LoadStylesheets(files []cache.File) error {
	cfg := s.GetConfig()
	root := s.RootPath()

	if files == nil {
		if root == "" {
			log.Info("No workspace root, skipping stylesheet discovery")
			return nil
		}
		discovered, err := DiscoverStylesheets(root, cfg)
		if err != nil {
			return err
		}
		log.Info("Discovered %d stylesheets under %s", len(discovered), root)
		files = discovered
	}

	kept := make([]cache.File, 0, len(files))
	for _, file := range files {
		if file.FSPath == "" {
			file.FSPath = uriutil.URIToPath(file.URI)
		}
		if file.URI == "" {
			file.URI = uriutil.PathToURI(file.FSPath)
		}
		if cfg.Excludes(file.FSPath, root) {
			log.Debug("Excluded stylesheet: %s", file.FSPath)
			continue
		}
		if s.documents.IsOpen(file.URI) {
			// The editor's copy wins until the document is closed
			s.trackDiskStylesheet(file.URI, file.FSPath)
			continue
		}
		kept = append(kept, file)
	}

	loaded, err := s.stylesheets.Seed(kept)
	for _, file := range kept {
		if entry := s.stylesheets.Get(file.URI); entry != nil && entry.Origin() == cache.Disk {
			s.trackDiskStylesheet(file.URI, file.FSPath)
		}
	}
	log.Info("Loaded %d of %d stylesheets", loaded, len(kept))
	return err
}

func (s *Server) trackDiskStylesheet(uri, path string) {
	s.diskFilesMu.Lock()
	defer s.diskFilesMu.Unlock()
	s.diskFiles[uri] = path
}

// IsDiskStylesheet reports whether uri was loaded from disk, so closing
// it should restore the saved contents rather than forget the stylesheet.
func (s *Server) IsDiskStylesheet(uri string) bool {
	s.diskFilesMu.RLock()
	defer s.diskFilesMu.RUnlock()
	_, ok := s.diskFiles[uri]
	return ok
}

// ForgetDiskStylesheet stops tracking a stylesheet that was deleted on disk
func (s *Server) ForgetDiskStylesheet(uri string) {
	s.diskFilesMu.Lock()
	defer s.diskFilesMu.Unlock()
	delete(s.diskFiles, uri)
}
