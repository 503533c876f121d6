package distance

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `,"Western Governors University 4001 South 700 East, Salt Lake City, UT 84107","International Peace Gardens 1060 Dalton Ave S","Sugar House Park 1330 2100 S"
"Western Governors University",0,,
"International Peace Gardens",7.2,0,
"Sugar House Park",3.8,7.1,0
`

func TestTableDistanceProviderMirrorsLowerTriangle(t *testing.T) {
	p, err := NewTableDistanceProvider(strings.NewReader(sampleTable))
	require.NoError(t, err)
	require.Len(t, p.Locations(), 3)

	ctx := context.Background()
	tests := []struct {
		from, to string
		want     float64
	}{
		{"HUB", "1060 Dalton Ave S, Salt Lake City, UT 84104", 7.2},
		{"1060 Dalton Ave S, Salt Lake City, UT 84104", "HUB", 7.2},
		{"1330 2100 S, Salt Lake City, UT 84106", "1060 Dalton Ave S", 7.1},
		{"4001 South 700 East, Salt Lake City, UT 84107", "1330 2100 S", 3.8},
		{"hub", "hub", 0},
	}
	for _, tc := range tests {
		got, err := p.Distance(ctx, tc.from, tc.to)
		require.NoError(t, err, "%s -> %s", tc.from, tc.to)
		assert.InDelta(t, tc.want, got, 1e-9, "%s -> %s", tc.from, tc.to)
	}
}

func TestTableDistanceProviderUnknownAddress(t *testing.T) {
	p, err := NewTableDistanceProvider(strings.NewReader(sampleTable))
	require.NoError(t, err)

	_, err = p.Distance(context.Background(), "HUB", "999 Nowhere Rd")
	assert.Error(t, err)
	_, err = p.Resolve("   ")
	assert.Error(t, err)
}

func TestTableDistanceProviderRejectsBadTables(t *testing.T) {
	tests := map[string]string{
		"empty":    "",
		"negative": ",A,B\nA,0,\nB,-1,0\n",
		"gap":      ",A,B\nA,0,\nB,,0\n",
		"rows":     ",A,B\nA,0,\n",
		"number":   ",A,B\nA,0,\nB,x,0\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewTableDistanceProvider(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "5383 south 900 east 104", NormalizeAddress("  5383 South   900 East #104 "))
	assert.Equal(t, "1060 dalton ave", streetKey("1060 Dalton Ave S, Salt Lake City"))
}

func TestConstantDistanceProvider(t *testing.T) {
	_, err := NewConstantDistanceProvider(-1)
	assert.Error(t, err)

	c, err := NewConstantDistanceProvider(3)
	require.NoError(t, err)
	d, err := c.Distance(context.Background(), "a", "a")
	require.NoError(t, err)
	assert.Equal(t, 3.0, d)
}

func TestMockDistanceProviderCountsCalls(t *testing.T) {
	p := NewMockDistanceProvider([]MockPair{{From: "a", To: "b", Miles: 4}})
	ctx := context.Background()

	d, err := p.Distance(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 4.0, d)

	_, err = p.Distance(ctx, "b", "a")
	assert.Error(t, err)
	assert.Equal(t, 2, p.Calls())
}
