package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/thread-harvest/internal"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultMaxOutputTokens = 1800

var summarySchema = generateSchema[Summary]()

// OpenAISummarizer summarizes threads with the OpenAI Responses API
type OpenAISummarizer struct {
	client          *openai.Client
	model           string
	maxOutputTokens int64
	rateLimitWaits  []time.Duration
	serverWaits     []time.Duration
}

// NewOpenAISummarizer creates a summarizer for model authenticated with apiKey
func NewOpenAISummarizer(apiKey, model string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	if model == "" {
		return nil, errors.New("openai model is empty")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAISummarizer{
		client:          &client,
		model:           model,
		maxOutputTokens: defaultMaxOutputTokens,
		rateLimitWaits:  []time.Duration{65 * time.Second, 100 * time.Second},
		serverWaits:     []time.Duration{5 * time.Second, 30 * time.Second},
	}, nil
}

// Summarize sends the thread transcript and decodes the structured reply
func (s *OpenAISummarizer) Summarize(ctx context.Context, thread *internal.Thread) (*Summary, error) {
	if len(thread.Messages) == 0 {
		return nil, fmt.Errorf("thread %s has no messages", thread.ID)
	}

	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(s.maxOutputTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(BuildInput(thread), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "ThreadSummary",
					Schema:      summarySchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Thread summary JSON"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := s.callWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("summarize thread %s: %w", thread.ID, err)
	}

	var out Summary
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	internal.LogDebug("Summarized thread %s with %s", thread.ID, s.model)
	return &out, nil
}

func (s *OpenAISummarizer) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	rateLimitAttempt, serverAttempt := 0, 0
	for {
		resp, err := s.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		var wait time.Duration
		switch {
		case isRateLimitError(err) && rateLimitAttempt < len(s.rateLimitWaits):
			wait = s.rateLimitWaits[rateLimitAttempt]
			rateLimitAttempt++
		case isServerError(err) && serverAttempt < len(s.serverWaits):
			wait = s.serverWaits[serverAttempt]
			serverAttempt++
		default:
			return nil, err
		}

		internal.LogWarn("OpenAI request failed, retrying in %v: %v", wait, err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// decodeModelJSON decodes model output, tolerating prose or code fences
// around the JSON object
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start != -1 && end == -1 {
		return io.ErrUnexpectedEOF
	}
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var schemaObj map[string]interface{}
	if err := json.Unmarshal(b, &schemaObj); err != nil {
		panic(err)
	}
	ensureStrictObjects(schemaObj)
	return schemaObj
}

// ensureStrictObjects marks every object closed with all properties
// required, as strict structured output demands
func ensureStrictObjects(schema map[string]interface{}) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false
		if properties, ok := schema["properties"].(map[string]interface{}); ok {
			required := make([]string, 0, len(properties))
			for name := range properties {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if properties, ok := schema["properties"].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureStrictObjects(propMap)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		ensureStrictObjects(items)
	}
}
