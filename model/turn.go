package model

// Turn is one exchange of a conversation
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Answer is the generated answer together with the metadata of the events it was grounded on
type Answer struct {
	Text    string          `json:"text"`
	Sources []EventMetadata `json:"sources"`
}
