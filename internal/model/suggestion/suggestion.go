package suggestion

// Suggestion is a starter prompt offered on the welcome screen.
type Suggestion struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Store exposes suggestion retrieval for HTTP handlers.
type Store interface {
	List() []Suggestion
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Suggestion
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied suggestions.
func NewMemoryStore(items []Suggestion) *MemoryStore {
	return &MemoryStore{items: append([]Suggestion(nil), items...)}
}

// List returns the predefined suggestion list.
func (s *MemoryStore) List() []Suggestion {
	return append([]Suggestion(nil), s.items...)
}

// Seed provides the default starter prompts shown to farmers.
func Seed() []Suggestion {
	return []Suggestion{
		{
			Title:    "Crop recommendations",
			Subtitle: "Get suggestions for best crops based on soil and season",
		},
		{
			Title:    "Pest identification",
			Subtitle: "Upload photos to identify pests and diseases",
		},
		{
			Title:    "Weather insights",
			Subtitle: "Get farming advice based on weather conditions",
		},
		{
			Title:    "Market prices",
			Subtitle: "Check current crop prices and market trends",
		},
	}
}
