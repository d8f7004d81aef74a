// Package source resolves the documents the CLI reads: files, entries of an
// fs.FS, HTTP(S) URLs or standard input.
package source

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Kind enumerates the loader modalities.
type Kind string

const (
	KindFile  Kind = "file"
	KindFS    Kind = "fs"
	KindURL   Kind = "url"
	KindStdin Kind = "stdin"
)

// Source identifies where a document comes from.
type Source struct {
	Kind     Kind
	Location string
}

func (s Source) String() string {
	if s.Kind == KindStdin {
		return "<stdin>"
	}
	return s.Location
}

// File returns a Source pointing to a file path.
func File(path string) Source {
	return Source{Kind: KindFile, Location: filepath.Clean(path)}
}

// FS returns a Source naming an entry of the loader's fs.FS.
func FS(name string) Source {
	return Source{Kind: KindFS, Location: name}
}

// Stdin returns the standard input Source.
func Stdin() Source {
	return Source{Kind: KindStdin, Location: "-"}
}

// URL validates raw and returns a Source for it.
func URL(raw string) (Source, error) {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Source{}, fmt.Errorf("source: invalid URL %q", raw)
	}
	return Source{Kind: KindURL, Location: raw}, nil
}

// Parse maps a command argument to a Source: "-" is stdin, http(s) prefixes
// are URLs, anything else is a file path.
func Parse(arg string) (Source, error) {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "":
		return Source{}, fmt.Errorf("source: empty location")
	case arg == "-":
		return Stdin(), nil
	case strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://"):
		return URL(arg)
	default:
		return File(arg), nil
	}
}
