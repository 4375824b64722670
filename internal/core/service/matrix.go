package service

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/berfenger/descview/internal/core/domain"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// BuildComparisonMatrix aligns the parameters of the given descriptors into
// one row per canonical key. descriptors follows refs; a nil descriptor
// (pending or failed) contributes no parameters.
func BuildComparisonMatrix(refs []domain.DeviceRef, descriptors []*domain.DeviceDescriptor) domain.ComparisonMatrix {
	matrix := domain.ComparisonMatrix{
		Devices: slices.Clone(refs),
		Rows:    []domain.ComparisonRow{},
	}

	// first-seen raw name per key, in selection then parameter order
	names := displayNames(descriptors)

	names.Each(func(k, v interface{}) {
		key := k.(string)
		displayName := v.(string)
		row := domain.ComparisonRow{
			CanonicalKey: key,
			DisplayName:  displayName,
			Values:       make([]*domain.ParameterRecord, len(refs)),
		}
		for i := range refs {
			if i < len(descriptors) {
				row.Values[i] = lookupParameter(descriptors[i], displayName, key)
			}
		}
		row.Differs = valuesDiffer(row.Values)
		matrix.Rows = append(matrix.Rows, row)
	})

	// presentation order is independent from naming order
	slices.SortStableFunc(matrix.Rows, func(a, b domain.ComparisonRow) int {
		if c := strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
			return c
		}
		return strings.Compare(a.CanonicalKey, b.CanonicalKey)
	})

	return matrix
}

func displayNames(descriptors []*domain.DeviceDescriptor) *linkedhashmap.Map {
	names := linkedhashmap.New()
	for _, d := range descriptors {
		if d == nil {
			continue
		}
		for _, p := range d.Parameters {
			key, ok := matchable(p.Name)
			if !ok {
				continue
			}
			if _, found := names.Get(key); !found {
				names.Put(key, p.Name)
			}
		}
	}
	return names
}

// lookupParameter prefers a literal (lower-cased) name match and falls
// back to the canonical key. Equal lower-cased names always share a key,
// so a parameter never lands in a row other than its own.
func lookupParameter(d *domain.DeviceDescriptor, displayName, key string) *domain.ParameterRecord {
	if d == nil {
		return nil
	}
	lowerName := strings.ToLower(displayName)
	for i := range d.Parameters {
		if strings.ToLower(d.Parameters[i].Name) == lowerName {
			return &d.Parameters[i]
		}
	}
	for i := range d.Parameters {
		if k, ok := matchable(d.Parameters[i].Name); ok && k == key {
			return &d.Parameters[i]
		}
	}
	return nil
}

// valuesDiffer compares the default values of the populated cells against
// the first populated one. Absent cells never count as a difference.
func valuesDiffer(values []*domain.ParameterRecord) bool {
	var first string
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		c := ComparableValue(v.DefaultValue)
		if !seen {
			first = c
			seen = true
			continue
		}
		if c != first {
			return true
		}
	}
	return false
}

// ComparableValue serializes a default value to a canonical form. Object
// keys are sorted and integral numbers lose their fractional part, so equal
// structures decoded from JSON or YAML compare equal.
func ComparableValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}
