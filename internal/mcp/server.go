// Package mcp serves the Form 4 tools over the Model Context Protocol
// (JSON-RPC 2.0, one message per line on stdio).
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const protocolVersion = "2024-11-05"

// Server implements the MCP server for EDGAR filings
type Server struct {
	tools   *ToolHandler
	version string
	logger  *slog.Logger
}

// NewServer creates a new MCP server
func NewServer(service FilingService, defaultLimit int, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		tools:   NewToolHandler(service, defaultLimit),
		version: version,
		logger:  logger,
	}
}

// MCP Protocol Types

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Capabilities    ServerCapabilities `json:"capabilities"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type CallToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type readResult struct {
	line []byte
	err  error
}

// Run serves requests read from r until EOF or ctx is cancelled. A read
// blocked on r does not delay cancellation.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan readResult)
	go func() {
		reader := bufio.NewReader(r)
		for {
			line, err := reader.ReadBytes('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	for {
		var res readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res = <-lines:
		}

		line, err := res.line, res.err
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		var req Request
		if jerr := json.Unmarshal(line, &req); jerr != nil {
			if werr := s.send(w, &Response{JSONRPC: "2.0", Error: &Error{Code: -32700, Message: "Parse error"}}); werr != nil {
				return werr
			}
		} else if resp := s.handleRequest(ctx, &req); resp != nil {
			if werr := s.send(w, resp); werr != nil {
				return werr
			}
		}

		if err == io.EOF {
			return nil
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	s.logger.Debug("mcp request", "method", req.Method)
	switch req.Method {
	case "initialize":
		return s.result(req, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: "edgar-sec-mcp", Version: s.version},
			Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		})
	case "tools/list":
		return s.result(req, ListToolsResult{Tools: toolDefinitions()})
	case "tools/call":
		return s.handleCallTool(ctx, req)
	case "notifications/initialized":
		return nil
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: -32601, Message: "Method not found"},
		}
	}
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &Error{Code: -32602, Message: "Invalid params"},
		}
	}

	result, err := s.tools.Handle(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", params.Name, "error", err)
		return s.result(req, CallToolResult{
			Content: []ToolContent{{Type: "text", Text: toolErrorText(err)}},
			IsError: true,
		})
	}

	text, err := json.Marshal(result)
	if err != nil {
		return s.result(req, CallToolResult{
			Content: []ToolContent{{Type: "text", Text: fmt.Sprintf("encoding result: %v", err)}},
			IsError: true,
		})
	}
	return s.result(req, CallToolResult{
		Content: []ToolContent{{Type: "text", Text: string(text)}},
	})
}

// toolErrorText renders a tool failure for the client
func toolErrorText(err error) string {
	var failure *filingError
	if errors.As(err, &failure) {
		return "Error " + failure.Error()
	}
	return err.Error()
}

func (s *Server) result(req *Request, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) send(w io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
