package normalisers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/pimctx/internal/core/domain"
)

// Canonical names of the structural keys. They never become attributes.
const (
	KeyUUID       = "uuid"
	KeyID         = "id"
	KeyFamily     = "family"
	KeyCategories = "categories"
	KeyValues     = domain.LegacyValuesKey
)

// Attribute names used to derive identity, family and categories.
const (
	AttrBrand       = "brand"
	AttrProductName = "product_name"
	AttrName        = "name"
	AttrType        = "type"
	AttrGender      = "gender"
	AttrSeason      = "season"
)

// ProductNamespace is the UUID namespace of derived product IDs.
var ProductNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("product.pimctx"))

// categorySources are synthesised into categories, in this order, when a
// record has no explicit category list.
var categorySources = []string{AttrType, AttrGender, AttrSeason}

// IsStructural reports whether a canonical key is an identity or layout key.
func IsStructural(name string) bool {
	switch name {
	case KeyUUID, KeyID, KeyFamily, KeyCategories, KeyValues:
		return true
	default:
		return false
	}
}

// DeriveID returns the deterministic ProductID for a brand and name.
func DeriveID(brand, name string) domain.ProductID {
	return domain.ProductID(uuid.NewSHA1(ProductNamespace, []byte(brand+"_"+name)).String())
}

// Draft collects what a normaliser extracted from one record before the
// shared identity, family and category rules are applied.
type Draft struct {
	id         string
	family     string
	categories []string
	attributes domain.Product
}

// NewDraft reads the structural keys of a record. Keys match on their
// canonical name, so "UUID" and "Family" are recognised.
func NewDraft(record domain.ProductRecord) *Draft {
	d := &Draft{}
	var explicitID string
	for _, key := range SortedKeys(record) {
		value := record[key]
		switch CanonicalName(key) {
		case KeyUUID:
			if s, ok := FormatValue(value); ok {
				d.id = s
			}
		case KeyID:
			if s, ok := FormatValue(value); ok {
				explicitID = s
			}
		case KeyFamily:
			if values := ValueList(value); len(values) > 0 {
				d.family = values[0]
			}
		case KeyCategories:
			d.categories = append(d.categories, ValueList(value)...)
		}
	}
	if d.id == "" {
		d.id = explicitID
	}
	return d
}

// AddAttribute appends values under the canonical form of key.
// Structural keys and empty values are ignored.
func (d *Draft) AddAttribute(key string, values ...string) {
	name := CanonicalName(key)
	if name == "" || IsStructural(name) {
		return
	}
	for _, v := range values {
		if v != "" {
			d.attributes.AddAttributeValue(name, v)
		}
	}
}

// AddTopLevel adds every non-structural top-level key of record as an
// attribute, in ascending key order.
func (d *Draft) AddTopLevel(record domain.ProductRecord) {
	for _, key := range SortedKeys(record) {
		if IsStructural(CanonicalName(key)) {
			continue
		}
		d.AddAttribute(key, ValueList(record[key])...)
	}
}

// Product applies the identity, family and category rules.
// It fails with domain.ErrInvalidInput when no identity can be found.
func (d *Draft) Product() (*domain.Product, error) {
	id, err := d.identity()
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:         id,
		Family:     d.family,
		Attributes: d.attributes.Attributes,
	}
	if p.Family == "" {
		if types := d.attributes.Attribute(AttrType); len(types) > 0 {
			p.Family = types[0]
		}
	}

	if len(d.categories) > 0 {
		for _, c := range d.categories {
			p.AddCategory(c)
		}
	} else {
		for _, source := range categorySources {
			for _, c := range d.attributes.Attribute(source) {
				p.AddCategory(c)
			}
		}
	}
	return p, nil
}

func (d *Draft) identity() (domain.ProductID, error) {
	if d.id != "" {
		return domain.ProductID(d.id), nil
	}
	brand := first(d.attributes.Attribute(AttrBrand))
	name := first(d.attributes.Attribute(AttrProductName))
	if name == "" {
		name = first(d.attributes.Attribute(AttrName))
	}
	if brand == "" || name == "" {
		return "", fmt.Errorf("%w: no id field and no brand and name to derive one", domain.ErrInvalidInput)
	}
	return DeriveID(brand, name), nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
