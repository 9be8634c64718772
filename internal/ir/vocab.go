package ir

import (
	"strings"
	"unicode"
)

// Well-known namespace IRIs.
const (
	NSSwivt = "http://semantic-mediawiki.org/swivt/1.0#"
	NSRDF   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSRDFS  = "http://www.w3.org/2000/01/rdf-schema#"
	NSXSD   = "http://www.w3.org/2001/XMLSchema#"
)

// XSD datatypes used by the query layer.
const (
	XSDString   = NSXSD + "string"
	XSDInteger  = NSXSD + "integer"
	XSDDecimal  = NSXSD + "decimal"
	XSDDouble   = NSXSD + "double"
	XSDBoolean  = NSXSD + "boolean"
	XSDDateTime = NSXSD + "dateTime"
)

// Prefix is one PREFIX declaration.
type Prefix struct {
	Name string
	IRI  string
}

// Vocabulary holds the IRI bases of one wiki export.
type Vocabulary struct {
	// WikiBase is the IRI prefix of exported pages ("wiki:").
	WikiBase string

	// PropertyBase is the IRI prefix of exported properties ("property:").
	// Empty means WikiBase + "Property-3A".
	PropertyBase string
}

// DefaultWikiBase is the export base of a wiki running on localhost.
const DefaultWikiBase = "http://localhost/wiki/Special:URIResolver/"

// DefaultVocabulary returns the vocabulary of a default local wiki.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{WikiBase: DefaultWikiBase}
}

func (v Vocabulary) propertyBase() string {
	if v.PropertyBase != "" {
		return v.PropertyBase
	}
	return v.WikiBase + EncodeURI("Property:")
}

// Prefixes returns the PREFIX table in a fixed order.
// "property" precedes "wiki" because its IRI usually extends the wiki base
// and the longest match has to win when abbreviating.
func (v Vocabulary) Prefixes() []Prefix {
	return []Prefix{
		{Name: "property", IRI: v.propertyBase()},
		{Name: "wiki", IRI: v.WikiBase},
		{Name: "swivt", IRI: NSSwivt},
		{Name: "rdf", IRI: NSRDF},
		{Name: "rdfs", IRI: NSRDFS},
		{Name: "xsd", IRI: NSXSD},
	}
}

// EntityResource returns the resource a page is exported as.
func (v Vocabulary) EntityResource(id EntityID) Resource {
	return Resource{IRI: v.WikiBase + EntityLocalName(id)}
}

// EntityLocalName returns the escaped local name of a page IRI.
func EntityLocalName(id EntityID) string {
	local := EncodeURI(id.PrefixedTitle())
	if id.Subobject != "" {
		local += EncodeURI("#" + id.Subobject)
	}
	return local
}

// PropertyResource returns the resource a property is exported as.
func (v Vocabulary) PropertyResource(p PropertyID) Resource {
	return Resource{IRI: v.propertyBase() + PropertyLocalName(p)}
}

// PropertyLocalName returns the escaped local name of a property IRI.
func PropertyLocalName(p PropertyID) string {
	return EncodeURI(strings.ReplaceAll(string(p), " ", "_"))
}

// EntityFromIRI maps a page IRI back to its EntityID. It reports false when
// the IRI is not under the wiki base or cannot be decoded.
func (v Vocabulary) EntityFromIRI(iri string) (EntityID, bool) {
	if v.WikiBase == "" || !strings.HasPrefix(iri, v.WikiBase) {
		return EntityID{}, false
	}
	if strings.HasPrefix(iri, v.propertyBase()) && v.propertyBase() != v.WikiBase {
		local, err := DecodeURI(strings.TrimPrefix(iri, v.propertyBase()))
		if err != nil || local == "" {
			return EntityID{}, false
		}
		return EntityID{Namespace: NSProperty, Title: NormalizeTitle(local)}, true
	}
	local, err := DecodeURI(strings.TrimPrefix(iri, v.WikiBase))
	if err != nil || local == "" {
		return EntityID{}, false
	}
	return ParseTitle(local), true
}

// TurtleName renders an element the way it appears inside a query:
// a prefixed name when the IRI falls under a known prefix and its local part
// is a valid prefixed-name local, "<iri>" otherwise. Literals are quoted and
// escaped; an xsd:string datatype is elided.
func (v Vocabulary) TurtleName(e Element) string {
	switch t := deref(e).(type) {
	case Resource:
		return v.resourceName(t.IRI)
	case Literal:
		var b strings.Builder
		b.WriteByte('"')
		b.WriteString(escapeLexical(t.Lexical))
		b.WriteByte('"')
		switch {
		case t.Lang != "":
			b.WriteByte('@')
			b.WriteString(t.Lang)
		case t.Datatype != "" && t.Datatype != XSDString:
			b.WriteString("^^")
			b.WriteString(v.resourceName(t.Datatype))
		}
		return b.String()
	}
	return ""
}

func (v Vocabulary) resourceName(iri string) string {
	if strings.HasPrefix(iri, "_:") {
		return iri
	}
	for _, p := range v.Prefixes() {
		if p.IRI == "" || !strings.HasPrefix(iri, p.IRI) {
			continue
		}
		local := iri[len(p.IRI):]
		if IsLocalName(local) {
			return p.Name + ":" + local
		}
		break
	}
	return "<" + iri + ">"
}

// IsLocalName reports whether s can be used as the local part of a prefixed
// name. It accepts the subset of PN_LOCAL that EncodeURI produces, plus any
// letter outside ASCII.
func IsLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		case r == '-' || r == '.':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return !strings.HasSuffix(s, ".")
}
