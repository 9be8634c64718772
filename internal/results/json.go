package results

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roach88/wikisparql/internal/ir"
)

// ParseJSON decodes a SPARQL Query Results JSON document, or a bare
// "true"/"false" body.
func ParseJSON(body []byte) (*FederatedResult, error) {
	if fr, ok := bareBoolean(body); ok {
		return fr, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, malformed("json", "invalid JSON", nil)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, malformed("json", "document is not an object", nil)
	}
	head := root.Get("head")
	if !head.Exists() {
		return nil, malformed("json", "missing head", nil)
	}

	if answer := root.Get("boolean"); answer.Exists() {
		if !answer.IsBool() {
			return nil, malformed("json", "boolean is not true or false", nil)
		}
		return BooleanResult(answer.Bool()), nil
	}

	var header []string
	for _, v := range head.Get("vars").Array() {
		header = append(header, v.String())
	}

	bindings := root.Get("results.bindings")
	if !bindings.IsArray() {
		return nil, malformed("json", "missing results.bindings", nil)
	}

	var (
		rows     [][]ir.Element
		parseErr error
	)
	bindings.ForEach(func(_, binding gjson.Result) bool {
		row := make([]ir.Element, len(header))
		for name, cell := range binding.Map() {
			idx := indexOf(header, name)
			if idx < 0 {
				parseErr = malformed("json", "binding for undeclared variable "+name, nil)
				return false
			}
			el, err := jsonTerm(cell)
			if err != nil {
				parseErr = err
				return false
			}
			row[idx] = el
		}
		rows = append(rows, row)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return NewFederatedResult(header, rows, ErrorNone), nil
}

func jsonTerm(cell gjson.Result) (ir.Element, error) {
	fields := cell.Map()
	value := fields["value"].String()
	switch t := fields["type"].String(); t {
	case "uri":
		return ir.NewResource(value), nil
	case "bnode":
		return ir.NewResource("_:" + value), nil
	case "literal", "typed-literal":
		return ir.Literal{
			Lexical:  value,
			Datatype: fields["datatype"].String(),
			Lang:     fields["xml:lang"].String(),
		}, nil
	default:
		return nil, malformed("json", "unknown term type "+t, nil)
	}
}

// ParseFor decodes body according to the media type of the response.
// JSON media types use ParseJSON; everything else, including an empty
// media type, uses Parse.
func ParseFor(mediaType string, body []byte) (*FederatedResult, error) {
	if strings.Contains(strings.ToLower(mediaType), "json") {
		return ParseJSON(body)
	}
	return Parse(body)
}
