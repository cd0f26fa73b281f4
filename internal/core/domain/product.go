package domain

// ProductID is the stable identifier of a catalog item, explicit or derived.
type ProductID string

// String returns the string representation.
func (id ProductID) String() string {
	return string(id)
}

// Attribute is one named product property. Values are always a list,
// even when the source carried a single scalar.
type Attribute struct {
	// Name is the canonical snake_case attribute name.
	Name string

	// Values holds every value in source order.
	Values []string
}

// Product is the canonical representation after normalisation.
// Both record shapes converge to it.
type Product struct {
	// ID is the unique identifier for the product.
	ID ProductID

	// Family is the product family or type. May be empty.
	Family string

	// Categories is the deduplicated, order-preserving category list.
	Categories []string

	// Attributes holds every non-structural property in first-seen order.
	Attributes []Attribute
}

// Attribute returns the values of the named attribute, or nil.
func (p *Product) Attribute(name string) []string {
	for _, a := range p.Attributes {
		if a.Name == name {
			return a.Values
		}
	}
	return nil
}

// AddAttributeValue appends a value under name, creating the attribute
// on first use so that name order follows first appearance.
func (p *Product) AddAttributeValue(name, value string) {
	for i := range p.Attributes {
		if p.Attributes[i].Name == name {
			p.Attributes[i].Values = append(p.Attributes[i].Values, value)
			return
		}
	}
	p.Attributes = append(p.Attributes, Attribute{Name: name, Values: []string{value}})
}

// AddCategory appends a category unless it is empty or already present.
func (p *Product) AddCategory(category string) {
	if category == "" {
		return
	}
	for _, c := range p.Categories {
		if c == category {
			return
		}
	}
	p.Categories = append(p.Categories, category)
}

// Facts expands the product into its canonical fact set.
func (p *Product) Facts() []Fact {
	facts := make([]Fact, 0, 1+len(p.Categories)+len(p.Attributes))
	if p.Family != "" {
		facts = append(facts, Fact{Subject: p.ID, Kind: FactIsA, Value: p.Family})
	}
	for _, c := range p.Categories {
		facts = append(facts, Fact{Subject: p.ID, Kind: FactHasCategory, Value: c})
	}
	for _, a := range p.Attributes {
		for _, v := range a.Values {
			facts = append(facts, Fact{Subject: p.ID, Kind: FactHasAttribute, Name: a.Name, Value: v})
		}
	}
	return facts
}
