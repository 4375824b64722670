package service

import (
	"strings"

	"github.com/berfenger/descview/internal/core/domain"
)

// FilterCandidates returns the catalog entries that may be added to the
// selection, in catalog order.
func FilterCandidates(catalog []domain.DeviceSummary, selection []domain.DeviceRef, query string) []domain.DeviceSummary {
	if strings.TrimSpace(query) == "" {
		query = ""
	}
	query = strings.ToLower(query)
	selected := make(map[string]struct{}, len(selection))
	for _, ref := range selection {
		selected[ref.Key()] = struct{}{}
	}

	candidates := make([]domain.DeviceSummary, 0, len(catalog))
	for _, dev := range catalog {
		if len(selection) > 0 && dev.Format != selection[0].Format {
			continue
		}
		if _, ok := selected[dev.Ref().Key()]; ok {
			continue
		}
		if query != "" && !matchesQuery(dev, query) {
			continue
		}
		candidates = append(candidates, dev)
	}
	return candidates
}

func matchesQuery(dev domain.DeviceSummary, lowerQuery string) bool {
	for _, field := range []string{dev.ProductName, dev.Manufacturer, dev.VendorName} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}
