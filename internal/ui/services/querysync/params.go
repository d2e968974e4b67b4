package querysync

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"metagrip/internal/domain"
)

// Location query parameter names
const (
	ParamQuery  = "q"
	ParamSort   = "sort"
	ParamOrder  = "order"
	ParamFilter = "filter"
	ParamPage   = "page"
)

// MaxPage bounds parsed page numbers so page offsets cannot overflow
const MaxPage = math.MaxInt32

// ParseQueryParams derives a valid QueryState from raw location parameters.
// Anything missing or invalid falls back to current (or to the defaults when
// current itself is invalid); it never fails.
func ParseQueryParams(raw url.Values, current domain.QueryState) domain.QueryState {
	current = sanitize(current)
	next := domain.QueryState{
		Query:   raw.Get(ParamQuery),
		Sort:    current.Sort,
		Filters: current.Filters,
		Page:    current.Page,
	}

	if spec, ok := domain.LookupSort(raw.Get(ParamSort), raw.Get(ParamOrder)); ok {
		next.Sort = spec
	}

	if values, ok := raw[ParamFilter]; ok && len(values) > 0 {
		next.Filters = verifyFilters(values)
	}

	if values, ok := raw[ParamPage]; ok && len(values) > 0 {
		if page, ok := parsePage(values[0]); ok {
			next.Page = page
		}
	}
	if next.Page <= 0 {
		next.Page = 1
	}

	return next
}

// verifyFilters keeps the accepted ids. When any entry is rejected the
// default set is unioned in, so a partially bad filter list still shows the
// defaults.
func verifyFilters(values []string) []domain.CategoryID {
	verified := make([]domain.CategoryID, 0, len(values))
	invalid := false
	for _, v := range values {
		id, ok := domain.ParseCategory(v)
		if !ok {
			invalid = true
			continue
		}
		verified = append(verified, id)
	}
	if invalid {
		verified = append(verified, domain.DefaultFilters...)
	}
	return domain.NormalizeFilters(verified)
}

// parsePage reads a page number the way a lenient numeric conversion would:
// blank is 0, decimals truncate, anything else is rejected.
func parsePage(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return min(n, MaxPage), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > MaxPage {
		return MaxPage, true
	}
	if f < 0 {
		return 0, true
	}
	return int(f), true
}

// sanitize repairs a state so it satisfies the QueryState invariants
func sanitize(s domain.QueryState) domain.QueryState {
	if _, ok := domain.LookupSort(string(s.Sort.Field), string(s.Sort.Direction)); !ok {
		s.Sort = domain.DefaultSort
	}
	s.Filters = domain.NormalizeFilters(s.Filters)
	if len(s.Filters) == 0 {
		s.Filters = slices.Clone(domain.DefaultFilters)
	}
	s.Page = min(max(s.Page, 1), MaxPage)
	return s
}

// ParseLocation parses a location string ("?q=x&page=2", "q=x" or a full
// URL) against current. Malformed pairs are ignored.
func ParseLocation(location string, current domain.QueryState) domain.QueryState {
	if i := strings.IndexByte(location, '?'); i >= 0 {
		location = location[i+1:]
	} else if strings.Contains(location, "://") || strings.HasPrefix(location, "/") {
		location = ""
	}
	if i := strings.IndexByte(location, '#'); i >= 0 {
		location = location[:i]
	}
	values, _ := url.ParseQuery(location)
	return ParseQueryParams(values, current)
}

// SerializeQueryString renders state as a location query string. Segments
// are emitted as q, sort+order, filter (repeated), page; empty segments are
// omitted. page is always present.
func SerializeQueryString(state domain.QueryState) string {
	segments := make([]string, 0, 4)

	if state.Query != "" {
		segments = append(segments, ParamQuery+"="+url.QueryEscape(state.Query))
	}

	if state.Sort.Field != "" {
		segments = append(segments,
			ParamSort+"="+url.QueryEscape(string(state.Sort.Field))+
				"&"+ParamOrder+"="+url.QueryEscape(string(state.Sort.Direction)))
	}

	if filters := domain.NormalizeFilters(state.Filters); len(filters) > 0 {
		parts := make([]string, len(filters))
		for i, f := range filters {
			parts[i] = ParamFilter + "=" + url.QueryEscape(string(f))
		}
		segments = append(segments, strings.Join(parts, "&"))
	}

	segments = append(segments, ParamPage+"="+strconv.Itoa(state.Page))

	return "?" + strings.Join(segments, "&")
}
