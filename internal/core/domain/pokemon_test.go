package domain

import "testing"

func TestNewPokemonSummary_ParsesTrailingSegment(t *testing.T) {
	s, parsed := NewPokemonSummary("pikachu", "https://pokeapi.co/api/v2/pokemon/25/")
	if !parsed {
		t.Fatalf("expected URL to parse")
	}
	if s.ID != 25 || s.Name != "pikachu" {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestNewPokemonSummary_ParsesWithoutTrailingSlash(t *testing.T) {
	s, parsed := NewPokemonSummary("bulbasaur", "https://pokeapi.co/api/v2/pokemon/1")
	if !parsed || s.ID != 1 {
		t.Fatalf("expected ID 1, got %+v (parsed=%v)", s, parsed)
	}
}

func TestNewPokemonSummary_FallbackIsDeterministic(t *testing.T) {
	a, parsed := NewPokemonSummary("missingno", "not-a-url")
	if parsed {
		t.Fatalf("expected fallback path")
	}
	b, _ := NewPokemonSummary("missingno", "not-a-url")
	if a.ID != b.ID {
		t.Fatalf("fallback ID not stable: %d vs %d", a.ID, b.ID)
	}
	if a.ID <= 0 {
		t.Fatalf("fallback ID must be positive, got %d", a.ID)
	}
}

func TestNewPokemonSummary_RejectsNonNumericSegment(t *testing.T) {
	s, parsed := NewPokemonSummary("ditto", "https://pokeapi.co/api/v2/pokemon/ditto/")
	if parsed {
		t.Fatalf("expected fallback for non-numeric segment, got %+v", s)
	}
}
