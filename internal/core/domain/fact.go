package domain

// FactKind is the predicate of a canonical fact.
type FactKind int

const (
	// FactIsA links a product to its family or type.
	FactIsA FactKind = iota + 1

	// FactHasCategory links a product to one category.
	FactHasCategory

	// FactHasAttribute links a product to one value of a named attribute.
	FactHasAttribute
)

// String returns the predicate name used in persisted stores.
func (k FactKind) String() string {
	switch k {
	case FactIsA:
		return "is_a"
	case FactHasCategory:
		return "has_category"
	case FactHasAttribute:
		return "has_attribute"
	default:
		return "unknown"
	}
}

// ParseFactKind converts a persisted predicate name back to a FactKind.
func ParseFactKind(s string) (FactKind, bool) {
	switch s {
	case "is_a":
		return FactIsA, true
	case "has_category":
		return FactHasCategory, true
	case "has_attribute":
		return FactHasAttribute, true
	default:
		return 0, false
	}
}

// Fact is a (subject, predicate, object) triple of product knowledge.
type Fact struct {
	// Subject is the product the fact is about.
	Subject ProductID

	// Kind is the predicate.
	Kind FactKind

	// Name is the attribute name. Only set for FactHasAttribute.
	Name string

	// Value is the object of the triple in string form.
	Value string
}

// Valid returns true if the fact has a subject, a known kind and a value.
func (f Fact) Valid() bool {
	if f.Subject == "" || f.Value == "" {
		return false
	}
	switch f.Kind {
	case FactIsA, FactHasCategory:
		return f.Name == ""
	case FactHasAttribute:
		return f.Name != ""
	default:
		return false
	}
}
