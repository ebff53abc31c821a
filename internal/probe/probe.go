// Package probe smoke-tests a running DICOM MCP server by speaking MCP to
// it: the server is spawned over stdio, its tools are listed and, when
// requested, one tool is called.
package probe

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClientName identifies the probe to the server during initialization.
const ClientName = "dicom-mcp-probe"

// ToolInfo is a tool advertised by the server.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CallResult is the outcome of a single tool call.
type CallResult struct {
	Tool    string `json:"tool"`
	IsError bool   `json:"isError"`
	Text    string `json:"text"`
}

// Report is everything the probe learned.
type Report struct {
	Tools []ToolInfo  `json:"tools"`
	Call  *CallResult `json:"call,omitempty"`
}

// Options select the optional tool call.
type Options struct {
	// Call names a tool to invoke after listing. Empty skips the call.
	Call string

	// Arguments are passed to the called tool.
	Arguments map[string]any
}

// CommandTransport returns a transport that spawns `py -m module` with
// unbuffered output. The server's stderr is forwarded to stderr.
func CommandTransport(py, module string, stderr io.Writer) *mcp.CommandTransport {
	// #nosec G204 -- interpreter comes from local discovery
	cmd := exec.Command(py, "-m", module)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
	cmd.Stderr = stderr
	return &mcp.CommandTransport{Command: cmd}
}

// Run connects over transport, lists tools and performs the optional call.
func Run(ctx context.Context, transport mcp.Transport, version string, opts Options) (*Report, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: ClientName, Version: version}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect MCP server: %w", err)
	}
	defer session.Close()

	report := &Report{}

	params := &mcp.ListToolsParams{}
	for {
		res, err := session.ListTools(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		for _, tool := range res.Tools {
			report.Tools = append(report.Tools, ToolInfo{Name: tool.Name, Description: tool.Description})
		}
		if res.NextCursor == "" {
			break
		}
		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}

	if opts.Call != "" {
		call, err := callTool(ctx, session, opts.Call, opts.Arguments)
		if err != nil {
			return report, err
		}
		report.Call = call
	}

	return report, nil
}

func callTool(ctx context.Context, session *mcp.ClientSession, name string, args map[string]any) (*CallResult, error) {
	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	var parts []string
	for _, c := range res.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return &CallResult{Tool: name, IsError: res.IsError, Text: strings.Join(parts, "\n")}, nil
}

// ParseArguments turns ["url=https://x", "headless=true"] into a tool
// argument map. Values stay strings except "true"/"false".
func ParseArguments(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: want key=value", pair)
		}
		switch value {
		case "true":
			args[key] = true
		case "false":
			args[key] = false
		default:
			args[key] = value
		}
	}
	return args, nil
}
