package domain

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Pokemon is the full catalog entry returned by a detail lookup. Entries are
// immutable once fetched and are never persisted locally.
type Pokemon struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Height    int           `json:"height"`
	Weight    int           `json:"weight"`
	Sprites   Sprites       `json:"sprites"`
	Types     []TypeSlot    `json:"types"`
	Abilities []AbilitySlot `json:"abilities"`
}

// Sprites holds the image references attached to a Pokemon.
type Sprites struct {
	FrontDefault string `json:"front_default,omitempty"`
}

// TypeSlot is one categorical tag with its display position.
type TypeSlot struct {
	Slot int      `json:"slot"`
	Type NamedRef `json:"type"`
}

// AbilitySlot is one trait entry with its display position.
type AbilitySlot struct {
	Ability  NamedRef `json:"ability"`
	IsHidden bool     `json:"is_hidden"`
	Slot     int      `json:"slot"`
}

// NamedRef is a name plus the remote resource URL it was read from.
type NamedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonSummary is a single row of a catalog page: just enough to render a
// list cell and to issue a follow-up detail lookup.
type PokemonSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// PokemonPage is one slice of the paginated catalog. HasNext is the sole
// pagination-continuation signal.
type PokemonPage struct {
	Results    []PokemonSummary `json:"results"`
	TotalCount int              `json:"total_count"`
	HasNext    bool             `json:"has_next"`
}

// NewPokemonSummary derives a summary's numeric ID from the trailing path
// segment of its resource URL (".../pokemon/25/" -> 25). When the URL does
// not carry a usable segment it falls back to a deterministic FNV-1a hash of
// the name; the second return value reports whether parsing succeeded so the
// caller can surface a warning.
func NewPokemonSummary(name, url string) (PokemonSummary, bool) {
	if id, ok := parseTrailingID(url); ok {
		return PokemonSummary{ID: id, Name: name, URL: url}, true
	}
	return PokemonSummary{ID: hashedID(name), Name: name, URL: url}, false
}

func parseTrailingID(url string) (int, bool) {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// hashedID maps a name to a stable positive identifier. FNV-1a keeps the
// fallback deterministic across runs, unlike a seeded hash.
func hashedID(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	id := int(h.Sum32() & 0x7FFFFFFF)
	if id == 0 {
		id = 1
	}
	return id
}
