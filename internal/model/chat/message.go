package chat

// Message is a single rendered turn in a conversation. Messages are
// immutable once appended; a transcript only ever grows.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp"`
}
