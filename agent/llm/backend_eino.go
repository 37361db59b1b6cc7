package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

const fragmentBuffer = 16

// ModelFactory creates the chat model used by one specialist.
type ModelFactory func(ctx context.Context, specialist string) (einomodel.ToolCallingChatModel, error)

// EinoBackend streams generations through eino chat models, one per
// specialist, created lazily and reused.
type EinoBackend struct {
	factory ModelFactory

	mu     sync.Mutex
	models map[string]einomodel.ToolCallingChatModel
}

var _ contractx.Backend = (*EinoBackend)(nil)

func NewEinoBackend(factory ModelFactory) *EinoBackend {
	return &EinoBackend{
		factory: factory,
		models:  make(map[string]einomodel.ToolCallingChatModel),
	}
}

func (b *EinoBackend) model(ctx context.Context, specialist string) (einomodel.ToolCallingChatModel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.models[specialist]; ok {
		return m, nil
	}
	m, err := b.factory(ctx, specialist)
	if err != nil {
		return nil, fmt.Errorf("%w: create model for specialist=%s: %v", contractx.ErrBackendUnavailable, specialist, err)
	}
	b.models[specialist] = m
	return m, nil
}

func (b *EinoBackend) Stream(ctx context.Context, req contractx.GenerateRequest) (*schema.StreamReader[contractx.Fragment], error) {
	base, err := b.model(ctx, req.Specialist)
	if err != nil {
		return nil, err
	}

	chat := base
	if infos := toolx.BuildInfos(req.Tools, req.Handoffs); len(infos) > 0 {
		chat, err = base.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrBackend, err)
		}
	}

	src, err := chat.Stream(ctx, BuildMessages(req))
	if err != nil {
		return nil, classify(err)
	}

	sr, sw := schema.Pipe[contractx.Fragment](fragmentBuffer)
	go pumpMessages(src, sw)
	return sr, nil
}

// pumpMessages forwards content deltas as they arrive and emits tool and
// handoff signals once the model stream is complete, since tool call
// arguments arrive in pieces.
func pumpMessages(src *schema.StreamReader[*schema.Message], sw *schema.StreamWriter[contractx.Fragment]) {
	defer sw.Close()
	defer src.Close()

	var chunks []*schema.Message
	for {
		chunk, err := src.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sw.Send(contractx.Fragment{}, classify(err))
			return
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if chunk.Content == "" {
			continue
		}
		if closed := sw.Send(contractx.TextFragment(chunk.Content), nil); closed {
			return
		}
	}

	if len(chunks) == 0 {
		return
	}
	full, err := schema.ConcatMessages(chunks)
	if err != nil {
		sw.Send(contractx.Fragment{}, fmt.Errorf("%w: concat stream: %v", contractx.ErrBackend, err))
		return
	}
	for _, tc := range full.ToolCalls {
		if closed := sw.Send(signal(tc.ID, tc.Function.Name, tc.Function.Arguments), nil); closed {
			return
		}
	}
}
