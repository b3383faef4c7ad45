package display

// Pattern is a set of lit segments, one bit per segment.
//
//	 a
//	---
//	f| |b
//	 -g-
//	e| |c
//	---
//	 d
type Pattern uint8

// Segment bits.
const (
	SegA Pattern = 1 << iota
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG

	// AllSegments is every segment of a digit.
	AllSegments = SegA | SegB | SegC | SegD | SegE | SegF | SegG

	// Blank lights nothing.
	Blank Pattern = 0
	// Dash is the middle bar, used as minus sign and out-of-range marker.
	Dash = SegG
)

var digits = [10]Pattern{
	SegA | SegB | SegC | SegD | SegE | SegF,        // 0
	SegB | SegC,                                    // 1
	SegA | SegB | SegD | SegE | SegG,               // 2
	SegA | SegB | SegC | SegD | SegG,               // 3
	SegB | SegC | SegF | SegG,                      // 4
	SegA | SegC | SegD | SegF | SegG,               // 5
	SegA | SegC | SegD | SegE | SegF | SegG,        // 6
	SegA | SegB | SegC,                             // 7
	SegA | SegB | SegC | SegD | SegE | SegF | SegG, // 8
	SegA | SegB | SegC | SegD | SegF | SegG,        // 9
}

// Digit returns the pattern for decimal digit d. Anything outside 0-9 is a dash.
func Digit(d int) Pattern {
	if d < 0 || d > 9 {
		return Dash
	}
	return digits[d]
}

// Segments calls fn for every lit segment of p, from a to g.
func (p Pattern) Segments(fn func(Pattern)) {
	for bit := SegA; bit <= SegG; bit <<= 1 {
		if p&bit != 0 {
			fn(bit)
		}
	}
}

// Count returns the number of lit segments.
func (p Pattern) Count() int {
	n := 0
	p.Segments(func(Pattern) { n++ })
	return n
}

// Symbol is an indicator on the status row.
type Symbol uint8

const (
	Play Symbol = iota
	Pause
	USB
	SD
	MHz
	MP3
	Points

	symbolCount
)

// Indicator lines of each symbol on the status row.
var symbols = [symbolCount]Pattern{
	Play:   0x01,
	Pause:  0x02,
	USB:    0x04,
	SD:     0x08,
	MHz:    0x20,
	MP3:    0x40,
	Points: 0x10,
}

// Pattern returns the indicator line of s, or Blank for an unknown symbol.
func (s Symbol) Pattern() Pattern {
	if s >= symbolCount {
		return Blank
	}
	return symbols[s]
}

func (s Symbol) String() string {
	switch s {
	case Play:
		return "play"
	case Pause:
		return "pause"
	case USB:
		return "usb"
	case SD:
		return "sd"
	case MHz:
		return "mhz"
	case MP3:
		return "mp3"
	case Points:
		return "points"
	default:
		return "unknown"
	}
}
