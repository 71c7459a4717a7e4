package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crosslight/controlroom/traffic/engine"
	"github.com/crosslight/controlroom/traffic/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Traffic Control Room",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Traffic Control Room - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The control room simulates an intersection with four approaches (north,
south, east, west). Each approach reports its vehicle density, speed limit,
predicted speed and the arrival estimates of two vehicle groups.

AVAILABLE TOOLS:
- traffic_status: Get the current state of every approach
- set_density: Set an approach's vehicle density (veh/km)
- set_max_speed: Set an approach's speed limit (km/h)
- assistant: Ask the heuristic assistant about current conditions

Density and speed changes restart that approach's arrival countdown and are
pushed to every connected operator within a second.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "traffic_status",
		Description: "Get the current traffic state of every approach",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleTrafficStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_density",
		Description: "Set the vehicle density (veh/km) of one approach",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Approach to update (north, south, east, west)",
				},
				"density": map[string]interface{}{
					"type":        "number",
					"description": "Vehicle density in veh/km",
				},
			},
			Required: []string{"direction", "density"},
		},
	}, c.handleSetDensity)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_max_speed",
		Description: "Set the speed limit (km/h) of one approach",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Approach to update (north, south, east, west)",
				},
				"max_speed": map[string]interface{}{
					"type":        "number",
					"description": "Speed limit in km/h",
				},
			},
			Required: []string{"direction", "max_speed"},
		},
	}, c.handleSetMaxSpeed)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "assistant",
		Description: "Ask the heuristic assistant about current traffic conditions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"prompt": map[string]interface{}{
					"type":        "string",
					"description": "Free-text question for the assistant",
				},
			},
		},
	}, c.handleAssistant)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["message"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleTrafficStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var snap engine.Snapshot
	if err := c.apiCall("GET", "/api/traffic", nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(snap)), nil
}

func (c *Client) handleSetDensity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)
	density, _ := args["density"].(float64)

	body := map[string]interface{}{"density": density}

	var resp struct {
		Success   bool    `json:"success"`
		Direction string  `json:"direction"`
		Density   float64 `json:"density"`
	}
	if err := c.apiCall("POST", fmt.Sprintf("/api/density/%s", direction), body, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Density on %s set to %g veh/km", resp.Direction, resp.Density)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSetMaxSpeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)
	maxSpeed, _ := args["max_speed"].(float64)

	body := map[string]interface{}{"maxSpeed": maxSpeed}

	var resp struct {
		Success bool                   `json:"success"`
		Data    engine.DirectionStatus `json:"data"`
	}
	if err := c.apiCall("POST", fmt.Sprintf("/api/traffic/%s/maxSpeed", direction), body, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Speed limit on %s set to %g km/h (predicted speed %g km/h)",
		direction, resp.Data.MaxSpeed, resp.Data.PredictedSpeed)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleAssistant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	prompt, _ := args["prompt"].(string)

	body := map[string]string{"prompt": prompt}

	var reply service.AssistReply
	if err := c.apiCall("POST", "/api/assistant", body, &reply); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(reply.Reply), nil
}

// formatSnapshot renders a snapshot as a compact table for tool output.
func formatSnapshot(snap engine.Snapshot) string {
	var b strings.Builder
	b.WriteString("Traffic status:\n")

	for _, dir := range engine.Directions {
		status, ok := snap[dir]
		if !ok {
			continue
		}

		b.WriteString(fmt.Sprintf("\n%s:\n", dir))
		b.WriteString(fmt.Sprintf("  density: %g veh/km, max speed: %g km/h, predicted: %g km/h\n",
			status.Density, status.MaxSpeed, status.PredictedSpeed))
		b.WriteString(fmt.Sprintf("  vehicles: %d total (%d first group, %d second group)\n",
			status.Volumes.Total, status.Volumes.First, status.Volumes.Second))
		b.WriteString(fmt.Sprintf("  first group: %s, second group: %s\n",
			formatGroup(status.FirstGroup), formatGroup(status.SecondGroup)))
	}

	return b.String()
}

func formatGroup(g engine.GroupStatus) string {
	if g.HasReached {
		return "reached"
	}
	return fmt.Sprintf("ETA %ds", g.EstimatedTimeToReach)
}
