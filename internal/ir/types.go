package ir

import (
	"strings"
)

// PropertyID identifies a wiki property by its DB key, e.g. "Has_population".
type PropertyID string

// Namespace indexes used by the wiki. Only the ones the query layer needs to
// name are listed; any other integer is still a valid namespace.
const (
	NSMain      = 0
	NSUser      = 2
	NSProject   = 4
	NSFile      = 6
	NSMediaWiki = 8
	NSTemplate  = 10
	NSHelp      = 12
	NSCategory  = 14
	NSProperty  = 102
	NSConcept   = 108
)

// namespaceNames maps namespace indexes to their canonical names.
var namespaceNames = map[int]string{
	NSUser:      "User",
	NSProject:   "Project",
	NSFile:      "File",
	NSMediaWiki: "MediaWiki",
	NSTemplate:  "Template",
	NSHelp:      "Help",
	NSCategory:  "Category",
	NSProperty:  "Property",
	NSConcept:   "Concept",
}

// NamespaceName returns the canonical name of a namespace index.
// The main namespace and unknown indexes have no name.
func NamespaceName(ns int) (string, bool) {
	name, ok := namespaceNames[ns]
	return name, ok
}

// NamespaceIndex looks up a namespace by name, ignoring case.
func NamespaceIndex(name string) (int, bool) {
	for idx, n := range namespaceNames {
		if strings.EqualFold(n, name) {
			return idx, true
		}
	}
	return 0, false
}

// EntityID identifies a wiki page, or a subobject of a page.
// Title is kept in DB-key form (see NormalizeTitle).
type EntityID struct {
	Namespace int    `json:"namespace" yaml:"namespace"`
	Title     string `json:"title" yaml:"title"`
	Subobject string `json:"subobject,omitempty" yaml:"subobject,omitempty"`
}

// NewEntityID creates an EntityID with a normalized title.
func NewEntityID(ns int, title string) EntityID {
	return EntityID{Namespace: ns, Title: NormalizeTitle(title)}
}

// ParseTitle splits a prefixed title such as "Category:Cities" or
// "Help:Foo#_sub1" into an EntityID. Unknown prefixes stay part of the
// title in the main namespace.
func ParseTitle(s string) EntityID {
	var sub string
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s, sub = s[:i], s[i+1:]
	}
	id := EntityID{Namespace: NSMain, Title: NormalizeTitle(s), Subobject: sub}
	if i := strings.IndexByte(s, ':'); i > 0 {
		if ns, ok := NamespaceIndex(strings.TrimSpace(s[:i])); ok {
			id.Namespace = ns
			id.Title = NormalizeTitle(s[i+1:])
		}
	}
	return id
}

// IsZero reports whether the identifier is unset.
func (e EntityID) IsZero() bool {
	return e == EntityID{}
}

// PrefixedTitle returns the title with its namespace prefix, without the
// subobject fragment.
func (e EntityID) PrefixedTitle() string {
	if name, ok := NamespaceName(e.Namespace); ok {
		return name + ":" + e.Title
	}
	return e.Title
}

// String returns the prefixed title, followed by "#subobject" if set.
func (e EntityID) String() string {
	if e.Subobject != "" {
		return e.PrefixedTitle() + "#" + e.Subobject
	}
	return e.PrefixedTitle()
}
