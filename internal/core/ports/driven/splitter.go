package driven

// TextSplitter cuts record text into chunks before embedding.
type TextSplitter interface {
	// Split returns the chunks of text in order. Blank text yields no chunks.
	Split(text string) []string
}
