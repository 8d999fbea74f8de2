// Package mcpserver exposes the signed-in user's Graph data as Model Context
// Protocol tools over stdio.
package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

// Tool names.
const (
	ToolWhoami  = "whoami"
	ToolProfile = "get_profile"
	ToolMail    = "get_mail"
)

// Server wraps an MCP server bound to a GraphService.
type Server struct {
	graph  driving.GraphService
	server *mcp.Server
}

// NoInput is the argument type of tools that take no arguments.
type NoInput struct{}

// WhoamiOutput is the result of the whoami tool.
type WhoamiOutput struct {
	Username string `json:"username" jsonschema:"the signed-in username, empty when signed out"`
	SignedIn bool   `json:"signed_in"`
}

// MailOutput is the result of the get_mail tool.
type MailOutput struct {
	Messages []domain.MailItem `json:"messages"`
}

// New creates a Server and registers its tools. graph should be built with
// domain.FlowNone so that no tool call opens a browser.
func New(graph driving.GraphService, version string) *Server {
	s := &Server{
		graph:  graph,
		server: mcp.NewServer(&mcp.Implementation{Name: "graph", Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolWhoami,
		Description: "Return the username of the signed-in Microsoft account.",
	}, s.whoami)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolProfile,
		Description: "Return the signed-in user's Microsoft Graph profile.",
	}, s.profile)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolMail,
		Description: "Return the signed-in user's most recent email messages.",
	}, s.mail)

	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session on t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) whoami(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, WhoamiOutput, error) {
	name := s.graph.UserName(ctx)
	return nil, WhoamiOutput{Username: name, SignedIn: name != ""}, nil
}

func (s *Server) profile(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, domain.UserInfo, error) {
	info, err := s.graph.GetProfile(ctx)
	if err != nil {
		return nil, domain.UserInfo{}, toolError(err)
	}
	return nil, *info, nil
}

func (s *Server) mail(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, MailOutput, error) {
	mail, err := s.graph.GetMail(ctx)
	if err != nil {
		return nil, MailOutput{}, toolError(err)
	}
	return nil, MailOutput{Messages: mail.Value}, nil
}

// errSignInRequired is reported when a tool needs the user at a terminal.
var errSignInRequired = errors.New("sign-in required: run 'graph signin' in a terminal, then retry")

// toolError rewords errors that need the user at a terminal.
func toolError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInteractionRequired),
		errors.Is(err, domain.ErrRedirectPending),
		errors.Is(err, domain.ErrNoAccount):
		logger.Debug("mcp: tool needs sign-in: %v", err)
		return errSignInRequired
	default:
		logger.Debug("mcp: tool failed: %v", err)
		return err
	}
}
