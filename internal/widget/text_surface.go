package widget

import (
	"fmt"
	"io"

	"github.com/zhouzirui/mindcare/internal/model/chat"
)

// TextSurface renders the chat to a plain writer. A terminal stream is always
// scrolled to its end and has no input field to clear.
type TextSurface struct {
	out io.Writer
}

// NewTextSurface writes the log and parameter display to out.
func NewTextSurface(out io.Writer) *TextSurface {
	return &TextSurface{out: out}
}

func (s *TextSurface) AppendMessage(msg chat.Message) {
	prefix := "ai> "
	if msg.Sender == chat.SenderUser {
		prefix = "you> "
	}
	fmt.Fprintf(s.out, "%s%s\n", prefix, msg.Text)
}

func (s *TextSurface) ScrollToBottom() {}

func (s *TextSurface) ClearInput() {}

func (s *TextSurface) ShowParameters(text string) {
	fmt.Fprintf(s.out, "--- emotion parameters ---\n%s\n", text)
}
