// Package normalisers converts raw catalog records into canonical products.
//
// Two record layouts are supported. The legacy layout nests attributes under
// "values" as lists of {"data": value} entries; the flat layout keeps
// attributes as top-level keys. Each layout has its own RecordNormaliser in a
// sub-package, and both hand their extracted fields to a Draft so that
// identity, family and category rules are applied in one place.
//
// Normalisers are registered with the Registry at startup.
package normalisers
