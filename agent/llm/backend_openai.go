package llm

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

// OpenAIBackend streams chat completions with the OpenAI SDK directly. It
// works against any OpenAI-compatible endpoint, Gemini's included.
type OpenAIBackend struct {
	client *openaisdk.Client
	cfg    Config
}

var _ contractx.Backend = (*OpenAIBackend)(nil)

func NewOpenAIBackend(client *openaisdk.Client, cfg Config) *OpenAIBackend {
	return &OpenAIBackend{client: client, cfg: cfg}
}

func (b *OpenAIBackend) Stream(ctx context.Context, req contractx.GenerateRequest) (*schema.StreamReader[contractx.Fragment], error) {
	params := b.params(req)
	stream := b.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		stream.Close()
		return nil, classify(err)
	}

	sr, sw := schema.Pipe[contractx.Fragment](fragmentBuffer)
	go pumpCompletions(stream, sw)
	return sr, nil
}

func (b *OpenAIBackend) params(req contractx.GenerateRequest) openaisdk.ChatCompletionNewParams {
	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(b.cfg.ModelFor(req.Specialist)),
		Messages: completionMessages(req),
	}
	if b.cfg.MaxCompletionToken > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(b.cfg.MaxCompletionToken))
	}
	params.Temperature = openaisdk.Float(float64(b.cfg.Temperature))

	for _, info := range toolx.BuildInfos(req.Tools, req.Handoffs) {
		params.Tools = append(params.Tools, openaisdk.ChatCompletionToolParam{
			Function: openaisdk.FunctionDefinitionParam{
				Name:        info.Name,
				Description: openaisdk.String(info.Desc),
				Parameters:  functionParameters(info.Name, req),
			},
		})
	}
	return params
}

// functionParameters renders the JSON schema of a tool's string arguments.
// Handoff pseudo-tools take no arguments.
func functionParameters(name string, req contractx.GenerateRequest) openaisdk.FunctionParameters {
	properties := map[string]any{}
	required := []string{}
	for _, t := range req.Tools {
		if t.Name != name {
			continue
		}
		for _, p := range t.Params {
			properties[p.Name] = map[string]any{
				"type":        "string",
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
	}
	return openaisdk.FunctionParameters{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func completionMessages(req contractx.GenerateRequest) []openaisdk.ChatCompletionMessageParamUnion {
	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.History)+2*len(req.Exchanges)+1)
	msgs = append(msgs, openaisdk.SystemMessage(systemPrompt(req)))

	for _, m := range req.History {
		switch m.Role {
		case statex.RoleUser:
			msgs = append(msgs, openaisdk.UserMessage(m.Content))
		case statex.RoleAssistant:
			msgs = append(msgs, openaisdk.AssistantMessage(m.Content))
		}
	}

	for i, ex := range req.Exchanges {
		id := callID(ex, i)
		assistant := openaisdk.ChatCompletionAssistantMessageParam{
			ToolCalls: []openaisdk.ChatCompletionMessageToolCallParam{{
				ID: id,
				Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
					Name:      ex.Call.Name,
					Arguments: encodeArgs(ex.Call.Args),
				},
			}},
		}
		if strings.TrimSpace(ex.Preamble) != "" {
			assistant.Content.OfString = openaisdk.String(ex.Preamble)
		}
		msgs = append(msgs,
			openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant},
			openaisdk.ToolMessage(ex.Result, id),
		)
	}
	return msgs
}

func pumpCompletions(stream *ssestream.Stream[openaisdk.ChatCompletionChunk], sw *schema.StreamWriter[contractx.Fragment]) {
	defer sw.Close()
	defer stream.Close()

	acc := openaisdk.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if closed := sw.Send(contractx.TextFragment(chunk.Choices[0].Delta.Content), nil); closed {
			return
		}
	}
	if err := stream.Err(); err != nil {
		sw.Send(contractx.Fragment{}, classify(err))
		return
	}

	if len(acc.Choices) == 0 {
		return
	}
	for _, tc := range acc.Choices[0].Message.ToolCalls {
		if closed := sw.Send(signal(tc.ID, tc.Function.Name, tc.Function.Arguments), nil); closed {
			return
		}
	}
}
