package classify

import (
	"strconv"

	"github.com/penwyp/go-codex-trace/internal/core/model"
)

// Classify projects a record into its title, ordered metadata and blocks.
// It depends on nothing but the record itself.
func Classify(rec model.Record) Summary {
	return Decode(rec).Summarize()
}

func pair(key, value string) model.MetaPair {
	return model.MetaPair{Key: key, Value: value}
}

func (g Generic) Summarize() Summary {
	return Summary{
		Title:  g.LineType,
		Meta:   []model.MetaPair{pair("line_type", g.LineType)},
		Blocks: []model.Block{model.JSONBlock("record", g.Record.JSON())},
	}
}

func (m SessionMeta) Summarize() Summary {
	s := Summary{
		Title: TypeSessionMeta,
		Meta: []model.MetaPair{
			pair("line_type", TypeSessionMeta),
			pair("session_id", m.SessionID),
			pair("cwd", m.Cwd),
			pair("originator", m.Originator),
			pair("source", m.Source),
			pair("cli_version", m.CLIVersion),
			pair("model_provider", m.ModelProvider),
		},
	}
	if m.BaseInstructions != "" {
		s.Blocks = append(s.Blocks, model.TextBlock("base_instructions.text", m.BaseInstructions))
	}
	if !m.Git.IsNull() {
		s.Blocks = append(s.Blocks, model.JSONBlock("git", m.Git.JSON()))
	}
	return s
}

func (c TurnContext) Summarize() Summary {
	s := Summary{
		Title: TypeTurnContext,
		Meta: []model.MetaPair{
			pair("line_type", TypeTurnContext),
			pair("turn_id", c.TurnID),
			pair("cwd", c.Cwd),
			pair("model", c.Model),
			pair("approval_policy", c.ApprovalPolicy),
			pair("effort", c.Effort),
			pair("summary", c.ReasoningSummary),
		},
	}
	if !c.SandboxPolicy.IsNull() {
		s.Blocks = append(s.Blocks, model.JSONBlock("sandbox_policy", c.SandboxPolicy.JSON()))
	}
	if !c.CollaborationMode.IsNull() {
		s.Blocks = append(s.Blocks, model.JSONBlock("collaboration_mode", c.CollaborationMode.JSON()))
	}
	if c.UserInstructions.Truthy() {
		s.Blocks = append(s.Blocks, model.TextBlock("user_instructions", c.UserInstructions.Text()))
	}
	if c.DeveloperInstructions.Truthy() {
		s.Blocks = append(s.Blocks, model.TextBlock("developer_instructions", c.DeveloperInstructions.Text()))
	}
	return s
}

func (e Event) Summarize() Summary {
	base := Summary{
		Title: TypeEventMsg + "." + e.Subtype,
		Meta: []model.MetaPair{
			pair("line_type", TypeEventMsg),
			pair("event_type", e.Subtype),
		},
	}
	return e.Body.refine(base)
}

func (u UserMessage) refine(s Summary) Summary {
	s.Meta = append(s.Meta,
		pair("images_count", strconv.Itoa(u.ImagesCount)),
		pair("local_images_count", strconv.Itoa(u.LocalImagesCount)),
	)
	s.Blocks = append(s.Blocks, model.TextBlock("message", u.Message))
	return s
}

func (a AgentMessage) refine(s Summary) Summary {
	s.Blocks = append(s.Blocks, model.TextBlock("message", a.Message))
	return s
}

func (a AgentReasoning) refine(s Summary) Summary {
	s.Blocks = append(s.Blocks, model.TextBlock("text", a.Text))
	return s
}

func (t TokenCount) refine(s Summary) Summary {
	if !t.Info.IsNull() {
		s.Blocks = append(s.Blocks, model.JSONBlock("info", t.Info.JSON()))
	}
	if !t.RateLimits.IsNull() {
		s.Blocks = append(s.Blocks, model.JSONBlock("rate_limits", t.RateLimits.JSON()))
	}
	return s
}

func (u UnknownEvent) refine(s Summary) Summary {
	s.Blocks = append(s.Blocks, model.JSONBlock("payload", u.Payload.JSON()))
	return s
}

func (i Item) Summarize() Summary {
	base := Summary{
		Title: TypeResponseItem + "." + i.Subtype,
		Meta: []model.MetaPair{
			pair("line_type", TypeResponseItem),
			pair("item_type", i.Subtype),
		},
	}
	return i.Body.refine(base)
}

func (m Message) refine(s Summary) Summary {
	s.Title = TypeResponseItem + "." + ItemMessage + "." + m.Role
	s.Meta = append(s.Meta, pair("role", m.Role))
	if m.Phase != "" {
		s.Meta = append(s.Meta, pair("phase", m.Phase))
	}
	s.Blocks = append(s.Blocks, ContentBlocks(m.Content)...)
	return s
}

func (r Reasoning) refine(s Summary) Summary {
	if r.Summary.IsArray() && r.Summary.Len() > 0 {
		s.Blocks = append(s.Blocks, ContentBlocks(r.Summary)...)
	}
	if !r.Content.IsNull() {
		s.Blocks = append(s.Blocks, model.TextBlock("content", r.Content.Text()))
	}
	if !r.EncryptedContent.IsNull() {
		s.Blocks = append(s.Blocks, model.TextBlock("encrypted_content", r.EncryptedContent.Text()))
	}
	return s
}

func (c ToolCall) refine(s Summary) Summary {
	s.Title = TypeResponseItem + "." + c.Subtype + "." + c.Name
	s.Meta = append(s.Meta, pair("name", c.Name), pair("call_id", c.CallID))
	if c.Status != "" {
		s.Meta = append(s.Meta, pair("status", c.Status))
	}
	s.Blocks = append(s.Blocks, c.Args.Block(c.ArgField))
	return s
}

func (o ToolCallOutput) refine(s Summary) Summary {
	s.Meta = append(s.Meta, pair("call_id", o.CallID))
	s.Blocks = append(s.Blocks, o.Output.Block("output"))
	return s
}

func (w WebSearchCall) refine(s Summary) Summary {
	s.Meta = append(s.Meta, pair("status", w.Status))
	if w.ActionType != "" {
		s.Meta = append(s.Meta, pair("action_type", w.ActionType))
		s.Title = TypeResponseItem + "." + ItemWebSearchCall + "." + w.ActionType
	}
	s.Blocks = append(s.Blocks, model.JSONBlock("action", w.Action.JSON()))
	return s
}

func (u UnknownItem) refine(s Summary) Summary {
	s.Blocks = append(s.Blocks, model.JSONBlock("payload", u.Payload.JSON()))
	return s
}
