// Package stream turns the lint tool's raw diagnostic output into messages.
//
// The tool writes a pseudo-XML document in arbitrarily sized chunks. A
// Reassembler cuts the byte stream into per-file Modules at module marker
// boundaries; a Parser decodes each Module's records into types.Message
// values.
package stream

import (
	"bytes"
	"strings"
)

// Wire literals.
const (
	// ModuleMarker opens a module record. It is followed by the file path,
	// a parenthesised language suffix and a line break.
	ModuleMarker = "--- Module:   "
	// DocOpen opens the tool's output document.
	DocOpen = "<doc>"
	// DocClose terminates the tool's output document.
	DocClose = "</doc>"
)

var (
	moduleMarker = []byte(ModuleMarker)
	docOpen      = []byte(DocOpen)
	docClose     = []byte(DocClose)
)

// Module is one self-contained fragment of tool output holding every
// diagnostic record for a single source file.
type Module struct {
	// Path is the source path from the marker line, as written by the tool.
	Path string
	// Language is the marker's language suffix (e.g. "C", "C++").
	Language string
	// Data is the record body wrapped in a single <doc>...</doc> pair.
	Data []byte
}

// newModule builds a Module from a raw range beginning at a module marker.
func newModule(raw []byte) Module {
	rest := raw[len(moduleMarker):]

	header := rest
	var body []byte
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		header = rest[:i]
		body = rest[i+1:]
	}
	path, lang := ParseModuleHeader(string(header))

	body = bytes.ReplaceAll(body, docOpen, nil)
	body = bytes.ReplaceAll(body, docClose, nil)

	data := make([]byte, 0, len(docOpen)+len(body)+len(docClose))
	data = append(data, docOpen...)
	data = append(data, body...)
	data = append(data, docClose...)

	return Module{Path: path, Language: lang, Data: data}
}

// ParseModuleHeader splits the text following a module marker into the file
// path and language suffix. "src/a.c (C)" yields ("src/a.c", "C"). A header
// without a suffix yields the trimmed text and an empty language.
func ParseModuleHeader(header string) (path, language string) {
	header = strings.TrimSpace(header)
	if !strings.HasSuffix(header, ")") {
		return header, ""
	}
	open := strings.LastIndex(header, " (")
	if open < 0 {
		return header, ""
	}
	return strings.TrimSpace(header[:open]), header[open+2 : len(header)-1]
}
