package model

const (
	LangText = "text"
	LangJSON = "json"
)

// Block is a labeled unit of display text. Text is already stringified.
type Block struct {
	Label    string
	Text     string
	Language string
}

// TextBlock builds a plain text block.
func TextBlock(label, text string) Block {
	return Block{Label: label, Text: text, Language: LangText}
}

// JSONBlock builds a block holding pretty-printed JSON.
func JSONBlock(label, text string) Block {
	return Block{Label: label, Text: text, Language: LangJSON}
}

// MetaPair is one ordered metadata entry. Empty values are skipped when
// rendered.
type MetaPair struct {
	Key   string
	Value string
}

// Fragment holds the rendered lines of one record section.
type Fragment struct {
	Lines []string
}
