package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

var bodies = map[string]string{
	"sessions?session_name=Race&year=2024": `[{"session_key": 9472, "meeting_key": 1229, "session_name": "Race", "date_start": "2024-03-02T15:00:00+00:00"}]`,
	"session_result?session_key=9472":      `[{"driver_number": 1, "position": 1, "points": 26}, {"driver_number": 11, "position": 2}, {"driver_number": 55, "position": 3}]`,
	"drivers?session_key=9472":             `[{"driver_number": 1, "full_name": "Max VERSTAPPEN", "team_name": "Red Bull Racing"}, {"driver_number": 11, "full_name": "Sergio PEREZ", "team_name": "Red Bull Racing"}, {"driver_number": 55, "full_name": "Carlos SAINZ", "team_name": "Ferrari"}]`,
	"meetings?meeting_key=1229":            `[{"meeting_key": 1229, "meeting_name": "Bahrain Grand Prix"}]`,
	"meetings?year=2024":                   `[{"meeting_key": 1229, "meeting_name": "Bahrain Grand Prix"}]`,
	"sessions?meeting_key=1229":            `[{"session_key": 9472, "session_name": "Race"}]`,
	"pit?session_key=9472":                 `[{"driver_number": 1, "lap_number": 17, "pit_duration": 24.1}]`,
}

func newTestTools(t *testing.T) *tools {
	t.Helper()
	getter := openf1.GetterFunc(func(_ context.Context, ep string, p openf1.Params) ([]byte, error) {
		if body, ok := bodies[openf1.Key(ep, p)]; ok {
			return []byte(body), nil
		}
		return []byte(`[]`), nil
	})
	api := openf1.NewAPI(getter, nil, nil)
	return &tools{opts: Options{
		Dashboard:   pipeline.NewDashboard(api, pipeline.Options{}),
		Records:     api,
		DefaultYear: 2024,
	}}
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestStandingsTool(t *testing.T) {
	tl := newTestTools(t)
	res, _, err := tl.standings(context.Background(), nil, StandingsArgs{Limit: 2, Races: true})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out StandingsOutput
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, 2024, out.Year)
	assert.Equal(t, 1, out.SessionsCounted)
	require.Len(t, out.Drivers, 2)
	assert.Equal(t, "Max VERSTAPPEN", out.Drivers[0].Name)
	assert.Equal(t, 26.0, out.Drivers[0].Points)
	assert.Equal(t, 18.0, out.Drivers[1].Points)
	require.Len(t, out.Teams, 2)
	assert.Equal(t, 44.0, out.Teams[0].Points)
	assert.Len(t, out.Races, 3)
}

func TestStandingsTool_RejectsEarlySeason(t *testing.T) {
	tl := newTestTools(t)
	res, _, err := tl.standings(context.Background(), nil, StandingsArgs{Year: 2018})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "2023")
}

func TestListTools(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	res, _, err := tl.meetings(ctx, nil, SeasonArgs{})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Bahrain Grand Prix")

	res, _, err = tl.sessions(ctx, nil, SessionsArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = tl.sessions(ctx, nil, SessionsArgs{MeetingKey: 1229})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"session_key":9472`)
}

func TestViewTool(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	res, _, err := tl.view(ctx, nil, ViewArgs{View: "pits", SessionKey: 9472})
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))
	var pits pipeline.PitsView
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &pits))
	assert.Equal(t, 1, pits.Count)
	assert.Equal(t, "Max VERSTAPPEN", pits.Stops[0].Driver)

	res, _, err = tl.view(ctx, nil, ViewArgs{View: "laps"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), pipeline.ErrNoSession.Error())

	res, _, err = tl.view(ctx, nil, ViewArgs{View: "telemetry", SessionKey: 9472})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRecordsTool(t *testing.T) {
	tl := newTestTools(t)
	ctx := context.Background()

	res, _, err := tl.records(ctx, nil, RecordsArgs{Endpoint: "pit", Params: map[string]string{"session_key": "9472"}})
	require.NoError(t, err)
	assert.JSONEq(t, bodies["pit?session_key=9472"], text(t, res))

	res, _, err = tl.records(ctx, nil, RecordsArgs{Endpoint: "car_data"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_InMemorySession(t *testing.T) {
	tl := newTestTools(t)
	server := NewServer(tl.opts)
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = ss.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	list, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"season_standings", "list_meetings", "list_sessions", "session_view", "records"}, names)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "season_standings",
		Arguments: map[string]any{"limit": 1},
	})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "Max VERSTAPPEN")
}
