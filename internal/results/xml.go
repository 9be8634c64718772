package results

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/roach88/wikisparql/internal/ir"
)

// SPARQL results XML namespaces.
const (
	ResultsNamespace = "http://www.w3.org/2005/sparql-results#"
	xmlNamespace     = "http://www.w3.org/XML/1998/namespace"
)

// Parse decodes a SPARQL Query Results XML document, or a bare
// "true"/"false" body.
func Parse(body []byte) (*FederatedResult, error) {
	if fr, ok := bareBoolean(body); ok {
		return fr, nil
	}
	d := &xmlDecoder{dec: xml.NewDecoder(bytes.NewReader(body))}
	return d.parse()
}

func bareBoolean(body []byte) (*FederatedResult, bool) {
	switch string(bytes.TrimSpace(body)) {
	case "true":
		return BooleanResult(true), true
	case "false":
		return BooleanResult(false), true
	}
	return nil, false
}

// xmlDecoder walks the token stream, keeping every comment it passes.
type xmlDecoder struct {
	dec      *xml.Decoder
	comments []string
}

// next returns the next start or end element.
func (d *xmlDecoder) next() (xml.Token, error) {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.EndElement:
			return t, nil
		case xml.Comment:
			d.comments = append(d.comments, strings.TrimSpace(string(t)))
		}
	}
}

func (d *xmlDecoder) parse() (*FederatedResult, error) {
	tok, err := d.next()
	if errors.Is(err, io.EOF) {
		return nil, malformed("xml", "missing <sparql> element", nil)
	}
	if err != nil {
		return nil, malformed("xml", "invalid XML", err)
	}
	root, ok := tok.(xml.StartElement)
	if !ok || root.Name.Local != "sparql" {
		return nil, malformed("xml", "missing <sparql> element", nil)
	}

	var (
		header   []string
		rows     [][]ir.Element
		haveHead bool
		haveBody bool
		answer   *bool
	)
	for done := false; !done; {
		tok, err := d.next()
		if err != nil {
			return nil, malformed("xml", "unterminated <sparql> element", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			done = true
		case xml.StartElement:
			switch t.Name.Local {
			case "head":
				header, err = d.parseHead()
				haveHead = true
			case "results":
				if !haveHead {
					return nil, malformed("xml", "<results> before <head>", nil)
				}
				rows, err = d.parseResults(header)
				haveBody = true
			case "boolean":
				var b bool
				b, err = d.parseBoolean()
				answer = &b
				haveBody = true
			default:
				if err = d.dec.Skip(); err != nil {
					err = malformed("xml", "invalid <sparql> element", err)
				}
			}
			if err != nil {
				return nil, err
			}
		}
	}
	d.drain()

	if !haveHead {
		return nil, malformed("xml", "missing <head> element", nil)
	}
	if !haveBody {
		return nil, malformed("xml", "missing <results> or <boolean> element", nil)
	}
	if answer != nil {
		fr := BooleanResult(*answer)
		return fr.WithErrorCode(ErrorNone, d.comments...), nil
	}
	return NewFederatedResult(header, rows, ErrorNone, d.comments...), nil
}

// drain collects comments after the root element.
func (d *xmlDecoder) drain() {
	for {
		if _, err := d.next(); err != nil {
			return
		}
	}
}

func (d *xmlDecoder) parseHead() ([]string, error) {
	var header []string
	for {
		tok, err := d.next()
		if err != nil {
			return nil, malformed("xml", "unterminated <head> element", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return header, nil
		case xml.StartElement:
			if t.Name.Local == "variable" {
				name := attr(t, "", "name")
				if name == "" {
					return nil, malformed("xml", "<variable> without a name", nil)
				}
				header = append(header, name)
			}
			if err := d.dec.Skip(); err != nil {
				return nil, malformed("xml", "invalid <head> element", err)
			}
		}
	}
}

func (d *xmlDecoder) parseResults(header []string) ([][]ir.Element, error) {
	var rows [][]ir.Element
	for {
		tok, err := d.next()
		if err != nil {
			return nil, malformed("xml", "unterminated <results> element", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return rows, nil
		case xml.StartElement:
			if t.Name.Local != "result" {
				if err := d.dec.Skip(); err != nil {
					return nil, malformed("xml", "invalid <results> element", err)
				}
				continue
			}
			row, err := d.parseResult(header)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}
}

func (d *xmlDecoder) parseResult(header []string) ([]ir.Element, error) {
	row := make([]ir.Element, len(header))
	for {
		tok, err := d.next()
		if err != nil {
			return nil, malformed("xml", "unterminated <result> element", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return row, nil
		case xml.StartElement:
			if t.Name.Local != "binding" {
				if err := d.dec.Skip(); err != nil {
					return nil, malformed("xml", "invalid <result> element", err)
				}
				continue
			}
			name := attr(t, "", "name")
			idx := indexOf(header, name)
			if idx < 0 {
				return nil, malformed("xml", "binding for undeclared variable "+name, nil)
			}
			el, err := d.parseBinding()
			if err != nil {
				return nil, err
			}
			row[idx] = el
		}
	}
}

// parseBinding reads the term inside a <binding> and its end element.
func (d *xmlDecoder) parseBinding() (ir.Element, error) {
	var el ir.Element
	for {
		tok, err := d.next()
		if err != nil {
			return nil, malformed("xml", "unterminated <binding> element", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if el == nil {
				return nil, malformed("xml", "empty <binding> element", nil)
			}
			return el, nil
		case xml.StartElement:
			text, err := d.text()
			if err != nil {
				return nil, err
			}
			switch t.Name.Local {
			case "uri":
				el = ir.NewResource(strings.TrimSpace(text))
			case "bnode":
				el = ir.NewResource("_:" + strings.TrimSpace(text))
			case "literal":
				el = ir.Literal{
					Lexical:  text,
					Datatype: attr(t, "", "datatype"),
					Lang:     attr(t, xmlNamespace, "lang"),
				}
			default:
				return nil, malformed("xml", "unknown term <"+t.Name.Local+">", nil)
			}
		}
	}
}

// text reads character data up to the end of the current element.
func (d *xmlDecoder) text() (string, error) {
	var b strings.Builder
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return "", malformed("xml", "unterminated term", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.Comment:
			d.comments = append(d.comments, strings.TrimSpace(string(t)))
		case xml.StartElement:
			return "", malformed("xml", "unexpected <"+t.Name.Local+"> inside a term", nil)
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

func (d *xmlDecoder) parseBoolean() (bool, error) {
	text, err := d.text()
	if err != nil {
		return false, err
	}
	switch strings.TrimSpace(text) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, malformed("xml", "invalid <boolean> value "+text, nil)
}

// attr returns an attribute value. An empty space matches any namespace;
// the xml namespace also matches the literal "xml" prefix.
func attr(e xml.StartElement, space, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space || (space == xmlNamespace && a.Name.Space == "xml") {
			return a.Value
		}
	}
	return ""
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
