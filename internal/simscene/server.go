package simscene

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ToolManageGameObject = "manage_gameobject"
	ToolExecuteMenuItem  = "execute_menu_item"
	ToolRenderScene      = "render_scene"

	// MenuPlay toggles play mode.
	MenuPlay = "Edit/Play"
)

// MCPServer returns an MCP server exposing the scene.
func (s *Scene) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("scenic-simscene", "0.1.0",
		server.WithToolCapabilities(false),
	)

	srv.AddTool(mcp.NewTool(ToolManageGameObject,
		mcp.WithDescription("Create, delete, find, modify or list game objects in the scene."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("create", "delete", "find", "modify", "list", "add_component"),
			mcp.Description("Operation to perform"),
		),
		mcp.WithString("name", mcp.Description("Name of the target game object")),
		mcp.WithString("shape", mcp.Description("Primitive shape such as cube, sphere or plane")),
		mcp.WithString("color", mcp.Description("Color name or #rrggbb")),
		mcp.WithNumber("scale", mcp.Description("Uniform scale, 1 by default")),
		mcp.WithObject("position",
			mcp.Description("World position"),
			mcp.Properties(map[string]any{
				"x": map[string]any{"type": "number"},
				"y": map[string]any{"type": "number"},
				"z": map[string]any{"type": "number"},
			}),
		),
		mcp.WithString("componentType", mcp.Description("Component to add, e.g. Camera or Light")),
	), s.handleManageGameObject)

	srv.AddTool(mcp.NewTool(ToolExecuteMenuItem,
		mcp.WithDescription("Execute an editor menu item. Edit/Play toggles play mode."),
		mcp.WithString("menu_path", mcp.Required(), mcp.Description("Menu path such as Edit/Play")),
	), s.handleExecuteMenuItem)

	srv.AddTool(mcp.NewTool(ToolRenderScene,
		mcp.WithDescription("Render the scene from the main camera and return a PNG image."),
	), s.handleRenderScene)

	return srv
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func textResult(msg string, data any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(response{Success: true, Message: msg, Data: data})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal response")
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Scene) handleManageGameObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	action, _ := args["action"].(string)
	name, _ := args["name"].(string)
	if name == "" {
		name, _ = args["objectName"].(string)
	}

	switch action {
	case "create":
		obj := Object{Name: name}
		applyAttributes(&obj, args)
		if component, _ := args["componentType"].(string); component != "" {
			obj.Components = []string{"Transform", component}
		}
		created, err := s.Create(obj)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return textResult(fmt.Sprintf("created %s", name), created)

	case "delete":
		if err := s.Delete(name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return textResult(fmt.Sprintf("deleted %s", name), nil)

	case "find":
		obj, err := s.Find(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return textResult(fmt.Sprintf("found %s", name), obj)

	case "modify":
		obj, err := s.Modify(name, func(o *Object) { applyAttributes(o, args) })
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return textResult(fmt.Sprintf("modified %s", name), obj)

	case "add_component":
		component, _ := args["componentType"].(string)
		if component == "" {
			return mcp.NewToolResultError("componentType is required"), nil
		}
		obj, err := s.Modify(name, func(o *Object) {
			if !o.hasComponent(component) {
				o.Components = append(o.Components, component)
			}
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return textResult(fmt.Sprintf("added %s to %s", component, name), obj)

	case "list":
		return textResult("scene objects", s.List())
	}

	return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
}

func applyAttributes(o *Object, args map[string]any) {
	if v, ok := args["shape"].(string); ok {
		o.Shape = v
	}
	if v, ok := args["color"].(string); ok {
		o.Color = v
	}
	if v, ok := args["scale"].(float64); ok && v > 0 {
		o.Scale = v
	}
	if p, ok := parsePosition(args["position"]); ok {
		o.Position = p
	}
}

func parsePosition(v any) (Vec3, bool) {
	num := func(v any) float64 {
		f, _ := v.(float64)
		return f
	}
	switch p := v.(type) {
	case map[string]any:
		return Vec3{X: num(p["x"]), Y: num(p["y"]), Z: num(p["z"])}, true
	case []any:
		if len(p) != 3 {
			return Vec3{}, false
		}
		return Vec3{X: num(p[0]), Y: num(p[1]), Z: num(p[2])}, true
	}
	return Vec3{}, false
}

func (s *Scene) handleExecuteMenuItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, _ := req.GetArguments()["menu_path"].(string)
	if path != MenuPlay {
		return mcp.NewToolResultError(fmt.Sprintf("unknown menu item %q", path)), nil
	}
	playing := s.TogglePlay()
	return textResult(fmt.Sprintf("play mode: %t", playing), map[string]any{"playing": playing})
}

func (s *Scene) handleRenderScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := s.Render()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultImage("scene rendered", base64.StdEncoding.EncodeToString(data), "image/png"), nil
}
