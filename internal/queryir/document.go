package queryir

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/wikisparql/internal/ir"
)

// Document is the serialized form of a Description, as written in YAML or
// CUE query files. Exactly one of the variant fields must be set:
//
//	and:
//	  - class: City
//	  - property: Population
//	    value: {comparator: ">=", literal: "1000000", datatype: xsd:integer}
//	  - or:
//	      - namespace: 0
//	      - concept: Big cities
type Document struct {
	Thing     bool        `yaml:"thing,omitempty" json:"thing,omitempty"`
	Property  string      `yaml:"property,omitempty" json:"property,omitempty"`
	Value     *ValueDoc   `yaml:"value,omitempty" json:"value,omitempty"`
	Some      *Document   `yaml:"some,omitempty" json:"some,omitempty"`
	Class     string      `yaml:"class,omitempty" json:"class,omitempty"`
	Namespace *int        `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Concept   string      `yaml:"concept,omitempty" json:"concept,omitempty"`
	And       []*Document `yaml:"and,omitempty" json:"and,omitempty"`
	Or        []*Document `yaml:"or,omitempty" json:"or,omitempty"`
}

// ValueDoc is the serialized form of a value comparison. Either Literal or
// Page is set.
type ValueDoc struct {
	Comparator string  `yaml:"comparator,omitempty" json:"comparator,omitempty"`
	Literal    *string `yaml:"literal,omitempty" json:"literal,omitempty"`
	Datatype   string  `yaml:"datatype,omitempty" json:"datatype,omitempty"`
	Lang       string  `yaml:"lang,omitempty" json:"lang,omitempty"`
	Page       string  `yaml:"page,omitempty" json:"page,omitempty"`
}

// SortDoc is one sort key of a query file.
type SortDoc struct {
	Property string `yaml:"property" json:"property"`
	Order    string `yaml:"order,omitempty" json:"order,omitempty"`
}

// QueryFile is a complete query as stored on disk: a description plus the
// execution parameters.
type QueryFile struct {
	Description *Document `yaml:"description" json:"description"`
	Mode        string    `yaml:"mode,omitempty" json:"mode,omitempty"`
	Limit       int       `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset      int       `yaml:"offset,omitempty" json:"offset,omitempty"`
	Sort        []SortDoc `yaml:"sort,omitempty" json:"sort,omitempty"`
}

// DecodeError is a document decoding error with source position.
type DecodeError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *DecodeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Description converts the document into a Description. Page values are
// resolved against vocab.
func (d *Document) Description(vocab ir.Vocabulary) (Description, error) {
	return d.convert(vocab, "$")
}

func (d *Document) convert(vocab ir.Vocabulary, path string) (Description, error) {
	if d == nil {
		return nil, &DecodeError{Field: path, Message: "empty description"}
	}
	if n := d.variantCount(); n != 1 {
		return nil, &DecodeError{Field: path, Message: fmt.Sprintf("expected exactly one of thing, property, value, class, namespace, concept, and, or; found %d", n)}
	}

	switch {
	case d.Thing:
		return Thing{}, nil

	case d.Property != "" && d.Value != nil:
		val, cmp, err := d.Value.element(vocab, path+".value")
		if err != nil {
			return nil, err
		}
		return Value{Property: PropertyKey(d.Property), Comparator: cmp, Value: val}, nil

	case d.Property != "":
		var inner Description = Thing{}
		if d.Some != nil {
			var err error
			if inner, err = d.Some.convert(vocab, path+".some"); err != nil {
				return nil, err
			}
		}
		return SomeProperty{Property: PropertyKey(d.Property), Inner: inner}, nil

	case d.Value != nil:
		val, cmp, err := d.Value.element(vocab, path+".value")
		if err != nil {
			return nil, err
		}
		return Value{Comparator: cmp, Value: val}, nil

	case d.Class != "":
		id := ir.ParseTitle(d.Class)
		id.Namespace = ir.NSCategory
		return Class{Category: id}, nil

	case d.Namespace != nil:
		return Namespace{Index: *d.Namespace}, nil

	case d.Concept != "":
		id := ir.ParseTitle(d.Concept)
		id.Namespace = ir.NSConcept
		return Concept{Entity: id}, nil

	case d.And != nil:
		parts, err := convertParts(d.And, vocab, path+".and")
		if err != nil {
			return nil, err
		}
		return Conjunction{Parts: parts}, nil

	default:
		parts, err := convertParts(d.Or, vocab, path+".or")
		if err != nil {
			return nil, err
		}
		return Disjunction{Parts: parts}, nil
	}
}

// variantCount counts the variant fields set. "property" combines with
// either "value" or "some" into a single variant.
func (d *Document) variantCount() int {
	n := 0
	if d.Thing {
		n++
	}
	switch {
	case d.Property != "":
		n++
		if d.Value != nil && d.Some != nil {
			n++
		}
	case d.Value != nil:
		n++
	}
	if d.Some != nil && d.Property == "" {
		n++
	}
	if d.Class != "" {
		n++
	}
	if d.Namespace != nil {
		n++
	}
	if d.Concept != "" {
		n++
	}
	if d.And != nil {
		n++
	}
	if d.Or != nil {
		n++
	}
	return n
}

func convertParts(docs []*Document, vocab ir.Vocabulary, path string) ([]Description, error) {
	parts := make([]Description, 0, len(docs))
	for i, doc := range docs {
		p, err := doc.convert(vocab, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func (v *ValueDoc) element(vocab ir.Vocabulary, path string) (ir.Element, Comparator, error) {
	cmp, err := ParseComparator(v.Comparator)
	if err != nil {
		return nil, Eq, &DecodeError{Field: path + ".comparator", Message: err.Error()}
	}
	switch {
	case v.Page != "" && v.Literal != nil:
		return nil, Eq, &DecodeError{Field: path, Message: "literal and page are mutually exclusive"}
	case v.Page != "":
		return vocab.EntityResource(ir.ParseTitle(v.Page)), cmp, nil
	case v.Literal != nil:
		if v.Lang != "" {
			return ir.NewLangLiteral(*v.Literal, v.Lang), cmp, nil
		}
		return ir.NewTypedLiteral(*v.Literal, expandDatatype(v.Datatype)), cmp, nil
	}
	return nil, Eq, &DecodeError{Field: path, Message: "value needs a literal or a page"}
}

// PropertyKey turns a property label as written by users into its id.
func PropertyKey(label string) ir.PropertyID {
	label = strings.TrimPrefix(strings.TrimSpace(label), "Property:")
	return ir.PropertyID(ir.NormalizeTitle(label))
}

func expandDatatype(dt string) string {
	if rest, ok := strings.CutPrefix(dt, "xsd:"); ok {
		return ir.NSXSD + rest
	}
	return dt
}

// DecodeYAML decodes a query file from YAML (or JSON) bytes.
func DecodeYAML(data []byte) (*QueryFile, error) {
	var qf QueryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&qf); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	if qf.Description == nil {
		return nil, &DecodeError{Field: "description", Message: "missing"}
	}
	return &qf, nil
}

// DecodeCUE decodes a query file from CUE source. The file name is used in
// error positions.
func DecodeCUE(data []byte, filename string) (*QueryFile, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var qf QueryFile
	if err := v.Decode(&qf); err != nil {
		return nil, formatCUEError(err)
	}
	if qf.Description == nil {
		return nil, &DecodeError{Field: "description", Message: "missing"}
	}
	return &qf, nil
}

// LoadFile reads a query file, choosing the decoder by extension:
// .cue for CUE, anything else (.yaml, .yml, .json) for YAML.
func LoadFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return DecodeCUE(data, path)
	}
	return DecodeYAML(data)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &DecodeError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
