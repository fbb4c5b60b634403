package openai

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	dataPrefix   = "data:"
	doneSentinel = "[DONE]"
)

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// sseParser turns a chat completion event stream into StreamEvents. Bytes
// may arrive split anywhere; an incomplete line stays buffered until the
// next Feed.
type sseParser struct {
	buf  []byte
	full strings.Builder
	done bool
}

// Feed consumes the next read and returns the events of every line it
// completed. Nothing is returned after the done sentinel.
func (p *sseParser) Feed(data []byte) []StreamEvent {
	if p.done {
		return nil
	}
	p.buf = append(p.buf, data...)

	var events []StreamEvent
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(p.buf[:i]))
		p.buf = p.buf[i+1:]

		if ev, ok := p.handleLine(line); ok {
			events = append(events, ev)
			if ev.Terminal() {
				p.buf = nil
				break
			}
		}
	}
	return events
}

func (p *sseParser) handleLine(line string) (StreamEvent, bool) {
	if line == "" || strings.HasPrefix(line, ":") {
		return StreamEvent{}, false
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return StreamEvent{}, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneSentinel {
		p.done = true
		return Done(p.full.String()), true
	}

	var chunk chatChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return StreamEvent{}, false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return StreamEvent{}, false
	}

	content := chunk.Choices[0].Delta.Content
	p.full.WriteString(content)
	return Chunk(content), true
}

// Finish flushes a trailing line that had no newline and ends a stream
// that closed without the sentinel. It returns nothing if the stream
// already finished.
func (p *sseParser) Finish() []StreamEvent {
	if p.done {
		return nil
	}

	var events []StreamEvent
	if len(p.buf) > 0 {
		line := strings.TrimSpace(string(p.buf))
		p.buf = nil
		if ev, ok := p.handleLine(line); ok {
			events = append(events, ev)
			if ev.Terminal() {
				return events
			}
		}
	}

	p.done = true
	return append(events, Done(p.full.String()))
}
