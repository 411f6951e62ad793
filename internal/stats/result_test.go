package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultMarshalJSON(t *testing.T) {
	res, err := Compute(collectionOf(1, 2, 3, 4, 5), []int{90, 50, 75})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	want := `{"total_bases":15,"total_sequences":5,"mean_length":3,"median_length":3,"n50":4,"n75":3,"n90":2}`
	assert.Equal(t, want, string(data))
}

func TestResultMarshalFractionalMedian(t *testing.T) {
	res, err := Compute(collectionOf(1, 2, 3, 4), []int{50})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"median_length":2.5`)
}

func TestResultRoundTrip(t *testing.T) {
	res, err := Compute(collectionOf(10, 20, 30), []int{50})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, float64(60), decoded["total_bases"])
	assert.Equal(t, float64(3), decoded["total_sequences"])
	assert.Equal(t, float64(20), decoded["mean_length"])
	assert.Equal(t, float64(20), decoded["median_length"])
	assert.Equal(t, float64(30), decoded["n50"])
}

func TestResultPercentilesSorted(t *testing.T) {
	res := &Result{NScores: map[int]int{90: 1, 10: 5, 50: 3}}
	assert.Equal(t, []int{10, 50, 90}, res.Percentiles())
}
