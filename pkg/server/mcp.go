package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/summit-buddy/pkg/dataset"
	"github.com/mikeboe/summit-buddy/pkg/entities"
	"github.com/mikeboe/summit-buddy/pkg/prompt"
)

type FindEntitiesArgs struct {
	Text string `json:"text" jsonschema:"free text, typically an assistant reply, to scan for summit entities"`
}

type FindEntitiesResp struct {
	Entities []entities.Match `json:"entities"`
}

type SummitContextArgs struct {
	Mode      string   `json:"mode,omitempty" jsonschema:"compressed (default) or full"`
	Role      string   `json:"role,omitempty" jsonschema:"attendee role, e.g. Founder or Researcher"`
	Interests []string `json:"interests,omitempty" jsonschema:"topics the attendee cares about"`
	Days      []int    `json:"days,omitempty" jsonschema:"summit days attended, 1 to 5"`
	Priority  string   `json:"priority,omitempty" jsonschema:"what the attendee wants most, e.g. networking"`
}

type SummitContextResp struct {
	Prompt string `json:"prompt"`
}

type SessionsByDayArgs struct {
	Day int `json:"day" jsonschema:"summit day, 1 (Feb 16) to 5 (Feb 20)"`
}

type SessionsByDayResp struct {
	Sessions []dataset.CardSession `json:"sessions"`
}

// SummitTools backs the MCP tools with the same dataset and index the chat
// endpoint uses.
type SummitTools struct {
	Data  *dataset.Dataset
	Index *entities.Index
}

func (t *SummitTools) FindEntities(ctx context.Context, req *mcp.CallToolRequest, args FindEntitiesArgs) (*mcp.CallToolResult, FindEntitiesResp, error) {
	return nil, FindEntitiesResp{Entities: t.Index.FindInText(args.Text)}, nil
}

func (t *SummitTools) SummitContext(ctx context.Context, req *mcp.CallToolRequest, args SummitContextArgs) (*mcp.CallToolResult, SummitContextResp, error) {
	profile := &dataset.UserProfile{
		Role:      args.Role,
		Interests: args.Interests,
		Days:      args.Days,
		Priority:  args.Priority,
	}
	if profile.IsZero() {
		profile = nil
	}
	return nil, SummitContextResp{Prompt: prompt.Build(prompt.ParseMode(args.Mode), t.Data, profile)}, nil
}

func (t *SummitTools) SessionsByDay(ctx context.Context, req *mcp.CallToolRequest, args SessionsByDayArgs) (*mcp.CallToolResult, SessionsByDayResp, error) {
	if args.Day < 1 || args.Day > dataset.SummitDays {
		return nil, SessionsByDayResp{}, fmt.Errorf("day must be between 1 and %d, got %d", dataset.SummitDays, args.Day)
	}

	sessions := make([]dataset.CardSession, 0)
	for _, s := range t.Data.Cards().Sessions {
		if s.Day == args.Day {
			sessions = append(sessions, s)
		}
	}
	return nil, SessionsByDayResp{Sessions: sessions}, nil
}

// NewMCPServer registers the summit tools on a new MCP server.
func NewMCPServer(tools *SummitTools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "summit-buddy-mcp",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_entities",
		Description: "Find sessions, speakers and exhibitors of the India AI Impact Summit mentioned in a piece of text.",
	}, tools.FindEntities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summit_context",
		Description: "Return the Summit Buddy system prompt, optionally personalised for an attendee profile.",
	}, tools.SummitContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sessions_by_day",
		Description: "List every session scheduled on one summit day.",
	}, tools.SessionsByDay)

	return server
}

// NewMCPHandler serves server over the streamable HTTP transport.
func NewMCPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
