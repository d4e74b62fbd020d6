package teams

import (
	"sort"
	"strings"

	"nfl_dashboard/aggregator/internal/models"
)

// Registry is the static NFL team table plus a name-to-id lookup.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	byID  map[string]models.Team
	names map[string]string
}

// NewRegistry returns a registry seeded with the 32 NFL franchises
func NewRegistry() *Registry {
	r := &Registry{
		byID:  make(map[string]models.Team, len(seed)),
		names: make(map[string]string, len(seed)*4+len(aliases)),
	}

	cityCount := make(map[string]int)
	for _, t := range seed {
		cityCount[NormalizeName(t.City)]++
	}

	for _, t := range seed {
		t.Abbreviation = t.ID
		r.byID[t.ID] = t

		r.names[NormalizeName(t.ID)] = t.ID
		r.names[NormalizeName(t.Name)] = t.ID
		r.names[NormalizeName(t.Nickname())] = t.ID
		if city := NormalizeName(t.City); cityCount[city] == 1 {
			r.names[city] = t.ID
		}
	}

	for alias, id := range aliases {
		r.names[NormalizeName(alias)] = id
	}

	return r
}

// NormalizeName lower-cases s and collapses runs of whitespace
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Get returns the seeded team for an id
func (r *Registry) Get(id string) (models.Team, bool) {
	t, ok := r.byID[strings.ToUpper(strings.TrimSpace(id))]
	return t, ok
}

// Resolve maps an abbreviation, alias, display name or nickname to a team id
func (r *Registry) Resolve(name string) (string, bool) {
	id, ok := r.names[NormalizeName(name)]
	return id, ok
}

// Matches reports whether an upstream team name refers to the team id
func (r *Registry) Matches(upstreamName, id string) bool {
	resolved, ok := r.Resolve(upstreamName)
	if !ok {
		return false
	}
	canonical, ok := r.Resolve(id)
	if !ok {
		canonical = strings.ToUpper(id)
	}
	return resolved == canonical
}

// SameDivision reports whether both ids are known and share a division
func (r *Registry) SameDivision(a, b string) bool {
	ta, okA := r.Get(a)
	tb, okB := r.Get(b)
	return okA && okB && a != b && ta.Division == tb.Division
}

// All returns the seeded teams ordered by id
func (r *Registry) All() []models.Team {
	out := make([]models.Team, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the seeded team ids ordered alphabetically
func (r *Registry) IDs() []string {
	all := r.All()
	ids := make([]string, len(all))
	for i, t := range all {
		ids[i] = t.ID
	}
	return ids
}
