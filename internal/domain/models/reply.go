package models

// Reply is one outbound chat message. Keyboard, when set, is rendered as a
// one-time reply keyboard with one button per row.
type Reply struct {
	Text           string
	Markdown       bool
	Keyboard       []string
	RemoveKeyboard bool
}

func PlainReply(text string) *Reply {
	return &Reply{Text: text}
}

func MarkdownReply(text string) *Reply {
	return &Reply{Text: text, Markdown: true}
}
