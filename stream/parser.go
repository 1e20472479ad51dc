package stream

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/types"
)

// DefaultPathCacheSize bounds the normalized path memo.
const DefaultPathCacheSize = 4096

// Record element names.
const (
	elemDoc         = "doc"
	elemMessage     = "m"
	elemFile        = "f"
	elemLine        = "l"
	elemType        = "t"
	elemNumber      = "n"
	elemDescription = "d"
)

// Parser decodes a Module's records into messages.
// A Parser is not safe for concurrent use.
type Parser struct {
	paths *lru.Cache[string, string]
}

// NewParser creates a Parser memoizing up to cacheSize normalized paths.
// A non-positive size selects DefaultPathCacheSize.
func NewParser(cacheSize int) *Parser {
	if cacheSize <= 0 {
		cacheSize = DefaultPathCacheSize
	}
	// lru.New only fails for non-positive sizes.
	paths, _ := lru.New[string, string](cacheSize)
	return &Parser{paths: paths}
}

func (p *Parser) normalize(raw string) string {
	if v, ok := p.paths.Get(raw); ok {
		return v
	}
	v := NormalizePath(raw)
	p.paths.Add(raw, v)
	return v
}

// record accumulates one <m> element's fields.
type record struct {
	fields map[string]string
}

func (r *record) reset() {
	r.fields = make(map[string]string, 5)
}

// Parse returns the module's messages in document order.
// Any structural or field error aborts the whole module with a *RecordError.
func (p *Parser) Parse(mod Module) ([]types.Message, error) {
	dec := xml.NewDecoder(bytes.NewReader(mod.Data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var (
		messages []types.Message
		rec      record
		inRecord bool
		field    string
		text     strings.Builder
	)

	fail := func(kind RecordErrorKind, msg string, err error) ([]types.Message, error) {
		return nil, &RecordError{
			Kind:   kind,
			Module: mod.Path,
			Offset: dec.InputOffset(),
			Msg:    msg,
			Err:    err,
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(RecordErrorSyntax, "decode", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch name := t.Name.Local; name {
			case elemDoc:
			case elemMessage:
				if inRecord {
					return fail(RecordErrorStructure, "record opened inside record", nil)
				}
				inRecord = true
				rec.reset()
			case elemFile, elemLine, elemType, elemNumber, elemDescription:
				if !inRecord || field != "" {
					return fail(RecordErrorStructure, fmt.Sprintf("unexpected <%s>", name), nil)
				}
				field = name
				text.Reset()
			default:
				return fail(RecordErrorStructure, fmt.Sprintf("unknown element <%s>", name), nil)
			}

		case xml.EndElement:
			switch name := t.Name.Local; name {
			case elemMessage:
				if !inRecord {
					return fail(RecordErrorStructure, "record close without open", nil)
				}
				if field != "" {
					return fail(RecordErrorStructure, fmt.Sprintf("unterminated <%s>", field), nil)
				}
				msg, err := p.build(rec)
				if err != nil {
					return fail(RecordErrorField, err.Error(), nil)
				}
				messages = append(messages, msg)
				inRecord = false
			case elemFile, elemLine, elemType, elemNumber, elemDescription:
				if field == name {
					rec.fields[name] = text.String()
					field = ""
				}
			}

		case xml.CharData:
			if field != "" {
				text.Write(t)
			}
		}
	}

	if inRecord {
		return fail(RecordErrorStructure, "unterminated record", nil)
	}
	return messages, nil
}

func (p *Parser) build(rec record) (types.Message, error) {
	rawLine, ok := rec.fields[elemLine]
	if !ok || strings.TrimSpace(rawLine) == "" {
		return types.Message{}, errors.New("missing line")
	}
	line, err := strconv.Atoi(strings.TrimSpace(rawLine))
	if err != nil || line < 0 {
		return types.Message{}, fmt.Errorf("invalid line %q", rawLine)
	}

	number := 0
	if rawNum := strings.TrimSpace(rec.fields[elemNumber]); rawNum != "" {
		number, err = strconv.Atoi(rawNum)
		if err != nil {
			return types.Message{}, fmt.Errorf("invalid number %q", rawNum)
		}
	}

	return types.Message{
		File:        p.normalize(rec.fields[elemFile]),
		Line:        line,
		Type:        types.ParseMessageType(rec.fields[elemType]),
		Number:      number,
		Description: strings.TrimSpace(rec.fields[elemDescription]),
	}, nil
}
