package repository

import (
	"sort"
	"strings"
	"unicode"

	"github.com/spec-kit/genius-car/internal/domain"
)

// matchesSearch reports whether any search term appears as a word in the
// service name or description, ignoring case.
func matchesSearch(svc *domain.Service, search string) bool {
	terms := tokenize(search)
	if len(terms) == 0 {
		return true
	}
	words := make(map[string]struct{})
	for _, w := range tokenize(svc.Name() + " " + svc.Description()) {
		words[w] = struct{}{}
	}
	for _, term := range terms {
		if _, ok := words[term]; ok {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// filterAndSortServices applies a ServiceFilter to an in-process slice.
func filterAndSortServices(services []domain.Service, filter domain.ServiceFilter) []domain.Service {
	out := make([]domain.Service, 0, len(services))
	for i := range services {
		if filter.Search != "" && !matchesSearch(&services[i], filter.Search) {
			continue
		}
		out = append(out, services[i])
	}
	desc := filter.Descending()
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Price() > out[j].Price()
		}
		return out[i].Price() < out[j].Price()
	})
	return out
}

func sortByID(services []domain.Service) {
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
}
