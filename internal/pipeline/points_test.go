package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
)

func TestResolvePoints(t *testing.T) {
	tests := []struct {
		name   string
		result model.Result
		want   model.PointsSource
	}{
		{
			name:   "provided wins over position",
			result: model.Result{Position: model.SomeInt(1), Points: model.SomeFloat(26)},
			want:   model.Provided{Value: 26},
		},
		{
			name:   "provided zero is still provided",
			result: model.Result{Position: model.SomeInt(3), Points: model.SomeFloat(0)},
			want:   model.Provided{Value: 0},
		},
		{
			name:   "provided without position",
			result: model.Result{Position: model.NullInt(), Points: model.SomeFloat(1)},
			want:   model.Provided{Value: 1},
		},
		{
			name:   "derived from winner",
			result: model.Result{Position: model.SomeInt(1)},
			want:   model.Derived{Position: 1, Value: 25},
		},
		{
			name:   "derived tenth",
			result: model.Result{Position: model.SomeInt(10)},
			want:   model.Derived{Position: 10, Value: 1},
		},
		{
			name:   "eleventh scores nothing",
			result: model.Result{Position: model.SomeInt(11)},
			want:   model.Zero{Reason: model.ZeroOutsideTable},
		},
		{
			name:   "zero position",
			result: model.Result{Position: model.SomeInt(0)},
			want:   model.Zero{Reason: model.ZeroOutsideTable},
		},
		{
			name:   "null position",
			result: model.Result{Position: model.NullInt()},
			want:   model.Zero{Reason: model.ZeroNoPosition},
		},
		{
			name:   "absent position",
			result: model.Result{},
			want:   model.Zero{Reason: model.ZeroNoPosition},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePoints(tt.result)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Points(), got.Points())
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestPointsTable_Matches(t *testing.T) {
	want := []float64{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}
	for i, pts := range want {
		assert.Equal(t, pts, PointsTable[i+1], "P%d", i+1)
	}
	assert.Len(t, PointsTable, 10)
}
