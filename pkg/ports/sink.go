package ports

// OutputSink accumulates predicted characters.
type OutputSink interface {
	Append(text string)
	Text() string
	Clear()
}
