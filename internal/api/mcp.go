package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/accord/internal/adaptation"
	"github.com/kalambet/accord/internal/culture"
	"github.com/kalambet/accord/internal/escalation"
	"github.com/kalambet/accord/internal/guidance"
	"github.com/kalambet/accord/internal/monitor"
	"github.com/kalambet/accord/internal/pipeline"
	"github.com/kalambet/accord/internal/storage"
	"github.com/kalambet/accord/internal/style"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *storage.Store
	Adapter *pipeline.Adapter
}

// NewMCPServer creates an MCP server with all accord tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"accord",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("accord — cultural adaptation of legal guidance and escalation monitoring for mediation cases."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("adapt_guidance",
			mcp.WithDescription("Culturally adapt a draft legal guidance document for a requester's background, category, language, and urgency."),
			mcp.WithString("guidance", mcp.Description("The draft guidance document as JSON"), mcp.Required()),
			mcp.WithString("background", mcp.Description("Requester's cultural background (e.g. asian, hispanic)"), mcp.Required()),
			mcp.WithString("legal_category", mcp.Description("Legal category (e.g. family_law, contract_dispute)")),
			mcp.WithString("language", mcp.Description("Requester's language code (default en)")),
			mcp.WithString("urgency", mcp.Description("One of: low, medium, high, critical")),
			mcp.WithBoolean("apply_style", mcp.Description("Also apply communication style substitution rules to the adapted text")),
			mcp.WithString("style_preference", mcp.Description("User style preference: formal or casual")),
		),
		mcpAdaptGuidance(deps),
	)

	s.AddTool(
		mcp.NewTool("preview_style",
			mcp.WithDescription("Select a communication style for a context and apply it to a piece of text, returning the rewrite and validation findings."),
			mcp.WithString("text", mcp.Description("The text to rewrite"), mcp.Required()),
			mcp.WithString("background", mcp.Description("Requester's cultural background"), mcp.Required()),
			mcp.WithString("legal_category", mcp.Description("Legal category")),
			mcp.WithString("urgency", mcp.Description("One of: low, medium, high, critical")),
			mcp.WithString("language", mcp.Description("Requester's language code (default en)")),
			mcp.WithString("user_preference", mcp.Description("Style preference: formal or casual")),
		),
		mcpPreviewStyle(),
	)

	s.AddTool(
		mcp.NewTool("assess_escalation",
			mcp.WithDescription("Score a mediation case's escalation risk from its recent timeline and record the assessment as a timeline event."),
			mcp.WithString("case_id", mcp.Description("ID of a stored mediation case"), mcp.Required()),
		),
		mcpAssessEscalation(deps),
	)

	s.AddTool(
		mcp.NewTool("lookup_profile",
			mcp.WithDescription("Resolve a cultural background label to its profile. Unknown labels return the default profile."),
			mcp.WithString("background", mcp.Description("Cultural background label"), mcp.Required()),
		),
		mcpLookupProfile(),
	)

	s.AddResource(
		mcp.NewResource(
			"culture://profiles",
			"Cultural Profiles",
			mcp.WithResourceDescription("The registered cultural profiles as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfiles(),
	)

	return s
}

func mcpAdaptGuidance(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		guidanceJSON, err := req.RequireString("guidance")
		if err != nil {
			return mcpError("guidance is required"), nil
		}
		background, err := req.RequireString("background")
		if err != nil {
			return mcpError("background is required"), nil
		}

		var doc guidance.LegalGuidance
		if err := json.Unmarshal([]byte(guidanceJSON), &doc); err != nil {
			return mcpError(fmt.Sprintf("invalid guidance JSON: %v", err)), nil
		}

		language := req.GetString("language", "en")
		urgency := req.GetString("urgency", adaptation.UrgencyMedium)

		preq := pipeline.Request{
			Context: adaptation.Context{
				UserBackground: background,
				LegalCategory:  req.GetString("legal_category", ""),
				Language:       language,
				Urgency:        urgency,
			},
			Guidance:        doc,
			ApplyStyle:      req.GetBool("apply_style", false),
			StylePreference: req.GetString("style_preference", ""),
		}

		result := deps.Adapter.Adapt(preq)

		rec, err := adaptationRecord(preq, result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to record adaptation: %v", err)), nil
		}
		if err := deps.Store.SaveAdaptation(rec); err != nil {
			return mcpError(fmt.Sprintf("failed to record adaptation: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpPreviewStyle() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}
		background, err := req.RequireString("background")
		if err != nil {
			return mcpError("background is required"), nil
		}

		sctx := style.Context{
			Background:     background,
			LegalCategory:  req.GetString("legal_category", ""),
			Urgency:        req.GetString("urgency", ""),
			Language:       req.GetString("language", "en"),
			UserPreference: req.GetString("user_preference", ""),
		}

		sa := style.NewSelector().Select(sctx)
		styled := style.Apply(text, sa)
		validation := style.Validate(styled, sctx)

		b, err := json.Marshal(map[string]any{
			"styled_text": styled,
			"adaptation":  sa,
			"validation":  validation,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpAssessEscalation(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		caseID, err := req.RequireString("case_id")
		if err != nil {
			return mcpError("case_id is required"), nil
		}

		if _, err := deps.Store.GetCase(caseID); errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("case %s not found", caseID)), nil
		} else if err != nil {
			return mcpError(fmt.Sprintf("failed to load case: %v", err)), nil
		}

		stored, err := deps.Store.RecentEvents(caseID, 10)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load events: %v", err)), nil
		}

		assessment := escalation.Assess(monitor.ToEscalationEvents(stored))

		ev, err := monitor.NewAssessmentEvent(caseID, assessment, time.Now().UTC())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to build assessment event: %v", err)), nil
		}
		if err := deps.Store.AppendEvent(ev); err != nil {
			return mcpError(fmt.Sprintf("assessed but failed to record event: %v", err)), nil
		}

		b, err := json.Marshal(assessment)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal assessment: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpLookupProfile() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		background, err := req.RequireString("background")
		if err != nil {
			return mcpError("background is required"), nil
		}

		b, err := json.Marshal(map[string]any{
			"background": culture.Normalize(background),
			"known":      culture.Known(background),
			"profile":    culture.Lookup(background),
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceProfiles() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		backgrounds := culture.Backgrounds()
		profiles := make(map[string]culture.Profile, len(backgrounds))
		for _, bg := range backgrounds {
			profiles[bg] = culture.Lookup(bg)
		}

		b, err := json.Marshal(profiles)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profiles: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
