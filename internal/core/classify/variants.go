package classify

import (
	"github.com/penwyp/go-codex-trace/internal/core/model"
)

// Record and payload discriminators.
const (
	TypeSessionMeta  = "session_meta"
	TypeTurnContext  = "turn_context"
	TypeEventMsg     = "event_msg"
	TypeResponseItem = "response_item"

	EventUserMessage    = "user_message"
	EventAgentMessage   = "agent_message"
	EventAgentReasoning = "agent_reasoning"
	EventTokenCount     = "token_count"

	ItemMessage              = "message"
	ItemReasoning            = "reasoning"
	ItemFunctionCall         = "function_call"
	ItemCustomToolCall       = "custom_tool_call"
	ItemFunctionCallOutput   = "function_call_output"
	ItemCustomToolCallOutput = "custom_tool_call_output"
	ItemWebSearchCall        = "web_search_call"
)

// Variant is one decoded record kind. Each concrete type carries only the
// fields its kind defines.
type Variant interface {
	Summarize() Summary
}

// Summary is the display projection of a record.
type Summary struct {
	Title  string
	Meta   []model.MetaPair
	Blocks []model.Block
}

// Generic covers records without an object payload and unrecognized
// top-level types. The whole record is dumped.
type Generic struct {
	LineType string
	Record   model.Value
}

type SessionMeta struct {
	SessionID        string
	Cwd              string
	Originator       string
	Source           string
	CLIVersion       string
	ModelProvider    string
	BaseInstructions string
	Git              model.Value
}

type TurnContext struct {
	TurnID                string
	Cwd                   string
	Model                 string
	ApprovalPolicy        string
	Effort                string
	ReasoningSummary      string
	SandboxPolicy         model.Value
	CollaborationMode     model.Value
	UserInstructions      model.Value
	DeveloperInstructions model.Value
}

type UserMessage struct {
	Message          string
	ImagesCount      int
	LocalImagesCount int
}

type AgentMessage struct {
	Message string
}

type AgentReasoning struct {
	Text string
}

type TokenCount struct {
	Info       model.Value
	RateLimits model.Value
}

// UnknownEvent absorbs event_msg subtypes without a dedicated rule.
type UnknownEvent struct {
	Subtype string
	Payload model.Value
}

type Message struct {
	Role    string
	Phase   string
	Content model.Value
}

type Reasoning struct {
	Summary          model.Value
	Content          model.Value
	EncryptedContent model.Value
}

// ToolCall is a function_call or custom_tool_call item.
type ToolCall struct {
	Subtype  string
	Name     string
	CallID   string
	Status   string
	ArgField string
	Args     Embedded
}

// ToolCallOutput is a function_call_output or custom_tool_call_output item.
type ToolCallOutput struct {
	Subtype string
	CallID  string
	Output  Embedded
}

type WebSearchCall struct {
	Status     string
	ActionType string
	Action     model.Value
}

// UnknownItem absorbs response_item subtypes without a dedicated rule.
type UnknownItem struct {
	Subtype string
	Payload model.Value
}

// Decode selects the variant for a record by its discriminators: the
// top-level type, then payload.type, then a kind-specific third level.
func Decode(rec model.Record) Variant {
	lineType := rec.Type()
	payload := rec.Payload()
	if !payload.IsObject() {
		return Generic{LineType: lineType, Record: rec.Root()}
	}

	switch lineType {
	case TypeSessionMeta:
		return decodeSessionMeta(payload)
	case TypeTurnContext:
		return decodeTurnContext(payload)
	case TypeEventMsg:
		return Event{Subtype: payload.Get("type").TextOr("unknown"), Body: decodeEvent(payload)}
	case TypeResponseItem:
		return Item{Subtype: payload.Get("type").TextOr("unknown"), Body: decodeItem(payload)}
	default:
		return Generic{LineType: lineType, Record: rec.Root()}
	}
}

// Event wraps an event_msg body with its subtype discriminator.
type Event struct {
	Subtype string
	Body    EventBody
}

// Item wraps a response_item body with its subtype discriminator.
type Item struct {
	Subtype string
	Body    ItemBody
}

// EventBody is implemented by the event_msg subtype variants. refine adds the
// subtype's meta and blocks to the common event summary.
type EventBody interface {
	refine(s Summary) Summary
}

// ItemBody is implemented by the response_item subtype variants.
type ItemBody interface {
	refine(s Summary) Summary
}

func decodeSessionMeta(p model.Value) SessionMeta {
	meta := SessionMeta{
		SessionID:     p.Get("id").Text(),
		Cwd:           p.Get("cwd").Text(),
		Originator:    p.Get("originator").Text(),
		Source:        p.Get("source").Text(),
		CLIVersion:    p.Get("cli_version").Text(),
		ModelProvider: p.Get("model_provider").Text(),
		Git:           p.Get("git"),
	}
	if base := p.Get("base_instructions"); base.IsObject() {
		if text := base.Get("text"); text.Truthy() {
			meta.BaseInstructions = text.Text()
		}
	}
	return meta
}

func decodeTurnContext(p model.Value) TurnContext {
	return TurnContext{
		TurnID:                p.Get("turn_id").Text(),
		Cwd:                   p.Get("cwd").Text(),
		Model:                 p.Get("model").Text(),
		ApprovalPolicy:        p.Get("approval_policy").Text(),
		Effort:                p.Get("effort").Text(),
		ReasoningSummary:      p.Get("summary").Text(),
		SandboxPolicy:         p.Get("sandbox_policy"),
		CollaborationMode:     p.Get("collaboration_mode"),
		UserInstructions:      p.Get("user_instructions"),
		DeveloperInstructions: p.Get("developer_instructions"),
	}
}

func decodeEvent(p model.Value) EventBody {
	subtype := p.Get("type").TextOr("unknown")
	switch subtype {
	case EventUserMessage:
		return UserMessage{
			Message:          p.Get("message").Text(),
			ImagesCount:      countOf(p.Get("images")),
			LocalImagesCount: countOf(p.Get("local_images")),
		}
	case EventAgentMessage:
		return AgentMessage{Message: p.Get("message").Text()}
	case EventAgentReasoning:
		return AgentReasoning{Text: p.Get("text").Text()}
	case EventTokenCount:
		return TokenCount{Info: p.Get("info"), RateLimits: p.Get("rate_limits")}
	default:
		return UnknownEvent{Subtype: subtype, Payload: p}
	}
}

func decodeItem(p model.Value) ItemBody {
	subtype := p.Get("type").TextOr("unknown")
	switch subtype {
	case ItemMessage:
		return Message{
			Role:    p.Get("role").TextOr("unknown"),
			Phase:   p.Get("phase").Text(),
			Content: p.Get("content"),
		}
	case ItemReasoning:
		return Reasoning{
			Summary:          p.Get("summary"),
			Content:          p.Get("content"),
			EncryptedContent: p.Get("encrypted_content"),
		}
	case ItemFunctionCall, ItemCustomToolCall:
		argField := "arguments"
		if subtype == ItemCustomToolCall {
			argField = "input"
		}
		return ToolCall{
			Subtype:  subtype,
			Name:     p.Get("name").TextOr("unknown_tool"),
			CallID:   p.Get("call_id").Text(),
			Status:   p.Get("status").Text(),
			ArgField: argField,
			Args:     ReparseEmbedded(p.Get(argField)),
		}
	case ItemFunctionCallOutput, ItemCustomToolCallOutput:
		return ToolCallOutput{
			Subtype: subtype,
			CallID:  p.Get("call_id").Text(),
			Output:  ReparseEmbedded(p.Get("output")),
		}
	case ItemWebSearchCall:
		action := p.Get("action")
		return WebSearchCall{
			Status:     p.Get("status").Text(),
			ActionType: action.Get("type").Text(),
			Action:     action,
		}
	default:
		return UnknownItem{Subtype: subtype, Payload: p}
	}
}

// countOf treats null and other falsy values as an empty list.
func countOf(v model.Value) int {
	if !v.Truthy() {
		return 0
	}
	return v.Len()
}
