package pipeline

import "github.com/Jorginton/f1-streamlit-dashboard/internal/model"

// PointsTable awards championship points by finishing position when the
// upstream record carries none.
var PointsTable = map[int]float64{
	1: 25, 2: 18, 3: 15, 4: 12, 5: 10,
	6: 8, 7: 6, 8: 4, 9: 2, 10: 1,
}

// ResolvePoints decides a result's points. A parseable provided value wins
// regardless of position; otherwise the position is looked up in PointsTable.
func ResolvePoints(r model.Result) model.PointsSource {
	if r.Points.Valid {
		return model.Provided{Value: r.Points.Value}
	}
	if !r.Position.Valid {
		return model.Zero{Reason: model.ZeroNoPosition}
	}
	pts, ok := PointsTable[r.Position.Value]
	if !ok {
		return model.Zero{Reason: model.ZeroOutsideTable}
	}
	return model.Derived{Position: r.Position.Value, Value: pts}
}
