// Package mcptools exposes standings and session views as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

// Records serves raw endpoint bodies.
type Records interface {
	Raw(ctx context.Context, endpoint string, params openf1.Params) []byte
}

// Options configures the tool server.
type Options struct {
	Dashboard   *pipeline.Dashboard
	Records     Records
	DefaultYear int
	Version     string
}

// SeasonArgs selects a season.
type SeasonArgs struct {
	Year int `json:"year,omitempty" jsonschema:"Championship season (0 = configured default)"`
}

// StandingsArgs are the input arguments for the season_standings tool.
type StandingsArgs struct {
	Year  int  `json:"year,omitempty" jsonschema:"Championship season (0 = configured default)"`
	Limit int  `json:"limit,omitempty" jsonschema:"Maximum rows per table (0 = all)"`
	Races bool `json:"races,omitempty" jsonschema:"Include the per-race points log"`
}

// StandingsOutput is the output of the season_standings tool.
type StandingsOutput struct {
	Year            int              `json:"year"`
	SessionsFound   int              `json:"sessions_found"`
	SessionsCounted int              `json:"sessions_counted"`
	Drivers         []model.Standing `json:"drivers"`
	Teams           []model.Standing `json:"teams"`
	Races           []model.RaceRow  `json:"races,omitempty"`
}

// SessionsArgs are the input arguments for the list_sessions tool.
type SessionsArgs struct {
	MeetingKey int `json:"meeting_key" jsonschema:"Meeting key (required)"`
}

// ViewArgs are the input arguments for the session_view tool.
type ViewArgs struct {
	View         string `json:"view" jsonschema:"One of overview, laps, stints, pits, positions, weather"`
	Year         int    `json:"year,omitempty" jsonschema:"Season (0 = configured default)"`
	MeetingKey   int    `json:"meeting_key,omitempty" jsonschema:"Meeting key"`
	SessionKey   int    `json:"session_key,omitempty" jsonschema:"Session key (required except for overview)"`
	DriverNumber int    `json:"driver_number,omitempty" jsonschema:"Filter by driver number"`
	Team         string `json:"team,omitempty" jsonschema:"Filter by team name"`
}

// RecordsArgs are the input arguments for the records tool.
type RecordsArgs struct {
	Endpoint string            `json:"endpoint" jsonschema:"OpenF1 endpoint, e.g. laps or session_result"`
	Params   map[string]string `json:"params,omitempty" jsonschema:"Query parameters, e.g. {\"session_key\": \"9158\"}"`
}

// Views lists the session_view names.
var Views = []string{"overview", "laps", "stints", "pits", "positions", "weather"}

// NewServer builds an MCP server with every tool registered.
func NewServer(opts Options) *mcp.Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "f1dash", Version: opts.Version}, nil)
	t := &tools{opts: opts}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "season_standings",
		Description: "Drivers' and constructors' championship tables for a season, computed from race results",
	}, t.standings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_meetings",
		Description: "Race weekends of a season with their meeting keys",
	}, t.meetings)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sessions",
		Description: "Sessions (practice, qualifying, race) of a meeting with their session keys",
	}, t.sessions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "session_view",
		Description: "Results, laps, tyre stints, pit stops, positions or weather for a session",
	}, t.view)

	if opts.Records != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "records",
			Description: "Raw OpenF1 records for one endpoint and query",
		}, t.records)
	}

	return server
}

// HTTPHandler serves server over streamable HTTP.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

type tools struct {
	opts Options
}

func (t *tools) year(y int) (int, error) {
	if y == 0 {
		y = t.opts.DefaultYear
	}
	if y < config.FirstSeason {
		return 0, fmt.Errorf("year must be %d or later", config.FirstSeason)
	}
	return y, nil
}

func (t *tools) standings(ctx context.Context, _ *mcp.CallToolRequest, args StandingsArgs) (*mcp.CallToolResult, any, error) {
	year, err := t.year(args.Year)
	if err != nil {
		return toolError(err), nil, nil
	}
	st, err := t.opts.Dashboard.Standings(ctx, pipeline.Query{Year: year})
	if err != nil {
		return toolError(err), nil, nil
	}

	out := StandingsOutput{
		Year:            st.Year,
		SessionsFound:   st.SessionsFound,
		SessionsCounted: st.SessionsCounted,
		Drivers:         limit(st.Drivers, args.Limit),
		Teams:           limit(st.Teams, args.Limit),
	}
	if args.Races {
		out.Races = st.Races
	}
	return toolJSON(out)
}

func (t *tools) meetings(ctx context.Context, _ *mcp.CallToolRequest, args SeasonArgs) (*mcp.CallToolResult, any, error) {
	year, err := t.year(args.Year)
	if err != nil {
		return toolError(err), nil, nil
	}
	sel := t.opts.Dashboard.Selection(ctx, pipeline.Query{Year: year})
	return toolJSON(sel.Meetings)
}

func (t *tools) sessions(ctx context.Context, _ *mcp.CallToolRequest, args SessionsArgs) (*mcp.CallToolResult, any, error) {
	if args.MeetingKey == 0 {
		return toolError(errors.New("meeting_key is required")), nil, nil
	}
	sel := t.opts.Dashboard.Selection(ctx, pipeline.Query{Year: t.opts.DefaultYear, MeetingKey: args.MeetingKey})
	return toolJSON(sel.Sessions)
}

func (t *tools) view(ctx context.Context, _ *mcp.CallToolRequest, args ViewArgs) (*mcp.CallToolResult, any, error) {
	year, err := t.year(args.Year)
	if err != nil {
		return toolError(err), nil, nil
	}
	q := pipeline.Query{
		Year:         year,
		MeetingKey:   args.MeetingKey,
		SessionKey:   args.SessionKey,
		DriverNumber: args.DriverNumber,
		Team:         args.Team,
	}
	d := t.opts.Dashboard

	var v any
	switch strings.ToLower(args.View) {
	case "overview", "results":
		if q.SessionKey == 0 && q.MeetingKey == 0 {
			return toolError(errors.New("session_key or meeting_key is required")), nil, nil
		}
		v = d.Overview(ctx, q)
	case "laps":
		v, err = d.Laps(ctx, q)
	case "stints":
		v, err = d.Stints(ctx, q)
	case "pits":
		v, err = d.Pits(ctx, q)
	case "positions":
		v, err = d.Positions(ctx, q)
	case "weather":
		v, err = d.Weather(ctx, q)
	default:
		return toolError(fmt.Errorf("unknown view %q (want one of %s)", args.View, strings.Join(Views, ", "))), nil, nil
	}
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(v)
}

func (t *tools) records(ctx context.Context, _ *mcp.CallToolRequest, args RecordsArgs) (*mcp.CallToolResult, any, error) {
	if !openf1.KnownEndpoint(args.Endpoint) {
		return toolError(fmt.Errorf("unknown endpoint %q", args.Endpoint)), nil, nil
	}
	body := t.opts.Records.Raw(ctx, args.Endpoint, openf1.Params(args.Params))
	if body == nil {
		body = []byte("[]")
	}
	return toolJSONBytes(body), nil, nil
}

func limit(rows []model.Standing, n int) []model.Standing {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSONBytes(b), nil, nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
