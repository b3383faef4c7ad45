package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// op is one driver call recorded by fakeDriver.
type op struct {
	clear    bool
	position Position
	pattern  Pattern
}

type fakeDriver struct {
	ops []op
}

func (d *fakeDriver) Show(position Position, pattern Pattern) {
	d.ops = append(d.ops, op{position: position, pattern: pattern})
}

func (d *fakeDriver) Clear() {
	d.ops = append(d.ops, op{clear: true})
}

func newRenderer(t *testing.T, mode Mode) (*Renderer, *fakeDriver, *[]time.Duration) {
	t.Helper()
	drv := &fakeDriver{}
	r, err := NewRenderer(Config{Mode: mode, Dwell: 100 * time.Microsecond}, drv)
	require.NoError(t, err)

	var waits []time.Duration
	r.SetSleep(func(d time.Duration) { waits = append(waits, d) })
	return r, drv, &waits
}

func TestDigit(t *testing.T) {
	assert.Equal(t, Pattern(0x3F), Digit(0))
	assert.Equal(t, Pattern(0x06), Digit(1))
	assert.Equal(t, Pattern(0x5B), Digit(2))
	assert.Equal(t, Pattern(0x4F), Digit(3))
	assert.Equal(t, Pattern(0x66), Digit(4))
	assert.Equal(t, Pattern(0x6D), Digit(5))
	assert.Equal(t, Pattern(0x7D), Digit(6))
	assert.Equal(t, Pattern(0x07), Digit(7))
	assert.Equal(t, Pattern(0x7F), Digit(8))
	assert.Equal(t, Pattern(0x6F), Digit(9))
	assert.Equal(t, Dash, Digit(10))
	assert.Equal(t, Dash, Digit(-1))
}

func TestPattern_Segments(t *testing.T) {
	var segs []Pattern
	Digit(4).Segments(func(p Pattern) { segs = append(segs, p) })
	assert.Equal(t, []Pattern{SegB, SegC, SegF, SegG}, segs)
	assert.Equal(t, 7, AllSegments.Count())
	assert.Equal(t, 0, Blank.Count())
}

func TestSymbol_Pattern(t *testing.T) {
	assert.Equal(t, Pattern(0x01), Play.Pattern())
	assert.Equal(t, Pattern(0x02), Pause.Pattern())
	assert.Equal(t, Pattern(0x04), USB.Pattern())
	assert.Equal(t, Pattern(0x08), SD.Pattern())
	assert.Equal(t, Pattern(0x20), MHz.Pattern())
	assert.Equal(t, Pattern(0x40), MP3.Pattern())
	assert.Equal(t, Pattern(0x10), Points.Pattern())
	assert.Equal(t, Blank, Symbol(42).Pattern())
	assert.Equal(t, "usb", USB.String())
}

func TestEncode_Numeric(t *testing.T) {
	tests := []struct {
		name    string
		channel ChannelType
		value   int
		want    []Cell
	}{
		{name: "zero", channel: First, value: 0, want: []Cell{{0, Digit(0)}, {1, Digit(0)}}},
		{name: "single digit", channel: First, value: 7, want: []Cell{{0, Digit(0)}, {1, Digit(7)}}},
		{name: "two digits", channel: First, value: 42, want: []Cell{{0, Digit(4)}, {1, Digit(2)}}},
		{name: "max", channel: Second, value: 99, want: []Cell{{2, Digit(9)}, {3, Digit(9)}}},
		{name: "minus five", channel: First, value: -5, want: []Cell{{0, Dash}, {1, Digit(5)}}},
		{name: "min", channel: Second, value: -9, want: []Cell{{2, Dash}, {3, Digit(9)}}},
		{name: "above range", channel: First, value: 100, want: []Cell{{0, Dash}, {1, Dash}}},
		{name: "below range", channel: First, value: -10, want: []Cell{{0, Dash}, {1, Dash}}},
		{name: "far out", channel: Second, value: 12345, want: []Cell{{2, Dash}, {3, Dash}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.channel, tt.value).Cells())
		})
	}
}

func TestEncode_Idempotent(t *testing.T) {
	for v := MinValue; v <= MaxValue; v++ {
		a, b := Encode(First, v), Encode(First, v)
		assert.Equal(t, a, b)
		if v >= 0 {
			assert.Equal(t, Digit(v/10), a.Cell(0).Pattern)
			assert.Equal(t, Digit(v%10), a.Cell(1).Pattern)
		}
	}
}

func TestEncode_Symbols(t *testing.T) {
	f := Encode(Symbols, int(MHz))
	require.Equal(t, 1, f.Len())
	assert.Equal(t, Cell{Position: Indicators, Pattern: MHz.Pattern()}, f.Cell(0))

	assert.Equal(t, 0, Encode(Symbols, 7).Len())
	assert.Equal(t, 0, Encode(Symbols, -1).Len())
	assert.Equal(t, 0, Encode(ChannelType(9), 5).Len())
}

func TestRender_Parallel(t *testing.T) {
	r, drv, waits := newRenderer(t, Parallel)

	f := r.Render(First, 42)
	assert.Equal(t, 2, f.Len())

	assert.Equal(t, []op{
		{position: 0, pattern: Digit(4)},
		{clear: true},
		{position: 1, pattern: Digit(2)},
		{clear: true},
		{clear: true},
	}, drv.ops)
	assert.Len(t, *waits, 2)
}

func TestRender_Sequential(t *testing.T) {
	r, drv, waits := newRenderer(t, Sequential)

	r.Render(Second, -1)

	assert.Equal(t, []op{
		{position: 2, pattern: SegG},
		{clear: true},
		{position: 3, pattern: SegB},
		{position: 3, pattern: SegC},
		{clear: true},
		{clear: true},
	}, drv.ops)
	assert.Len(t, *waits, 3)
	for _, w := range *waits {
		assert.Equal(t, 100*time.Microsecond, w)
	}
}

func TestRender_SequentialAndParallelLightSameSegments(t *testing.T) {
	for v := -12; v <= 102; v++ {
		rp, dp, _ := newRenderer(t, Parallel)
		rs, ds, _ := newRenderer(t, Sequential)
		rp.Render(First, v)
		rs.Render(First, v)
		assert.Equal(t, lit(dp.ops), lit(ds.ops), "value %d", v)
	}
}

// lit folds recorded ops into the union of segments lit per position.
func lit(ops []op) map[Position]Pattern {
	out := make(map[Position]Pattern)
	for _, o := range ops {
		if !o.clear {
			out[o.position] |= o.pattern
		}
	}
	return out
}

func TestRender_Symbol(t *testing.T) {
	r, drv, _ := newRenderer(t, Sequential)

	r.Render(Symbols, int(Points))
	assert.Equal(t, []op{
		{position: Indicators, pattern: Points.Pattern()},
		{clear: true},
		{clear: true},
	}, drv.ops)
}

func TestRender_AlwaysEndsBlank(t *testing.T) {
	r, drv, _ := newRenderer(t, Sequential)

	r.Render(Symbols, 100)
	require.NotEmpty(t, drv.ops)
	assert.True(t, drv.ops[len(drv.ops)-1].clear)

	drv.ops = nil
	r.Render(First, 88)
	assert.True(t, drv.ops[len(drv.ops)-1].clear)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, Config{Mode: "strobe"}.Validate(), ErrMode)
	assert.Error(t, Config{Mode: Parallel, Dwell: -time.Second}.Validate())

	_, err := NewRenderer(DefaultConfig(), nil)
	assert.Error(t, err)
}
