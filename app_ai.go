package main

import (
	"context"
	"fmt"
	"log"

	"ghostscout/internal/openai"
)

// Stream slots; a new request in a slot cancels the previous one
const (
	streamAsk     = "ask"
	streamMatchup = "matchup"
)

type aiStream struct {
	events <-chan openai.StreamEvent
	cancel context.CancelFunc
}

// Ask sends a free-form question to the assistant
func (a *App) Ask(question string) {
	a.startStream(streamAsk, openai.AssistantSystemPrompt, question)
}

func (a *App) startStream(slot, system, user string) {
	if a.engine.APIKey == "" {
		fmt.Println("No API key configured (set OPENAI_API_KEY or ai.api_key)")
		return
	}
	if prev, ok := a.streams[slot]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(a.ctx)
	a.streams[slot] = &aiStream{
		cancel: cancel,
		events: a.ai.Stream(ctx, openai.Request{
			Endpoint:     a.engine.APIURL,
			APIKey:       a.engine.APIKey,
			Model:        a.engine.Models[0],
			SystemPrompt: system,
			UserPrompt:   user,
		}),
	}
	fmt.Printf("[%s] ", slot)
}

func (a *App) drainStreams() {
	for slot, s := range a.streams {
		a.drainStream(slot, s)
	}
}

func (a *App) drainStream(slot string, s *aiStream) {
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.cancel()
				delete(a.streams, slot)
				return
			}
			switch ev.Type {
			case openai.EventChunk:
				fmt.Print(ev.Text)
			case openai.EventDone:
				fmt.Println()
			case openai.EventError:
				log.Printf("[AI] %s request failed: %s", slot, ev.Text)
				fmt.Printf("\nAI error: %s\n", ev.Text)
			}
		default:
			return
		}
	}
}
