// ABOUTME: Sparkline widget renders mini trend charts using block characters
// ABOUTME: Used for daily account activity on the profile screen

package widgets

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SparklineBlocks are the Unicode block characters for different heights
var SparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values (oldest first) scaled to width characters
func Sparkline(values []float64, width int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sampled := sampleValues(values, width)
	lo, hi := sampled[0], sampled[0]
	for _, v := range sampled {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	result := make([]rune, len(sampled))
	for i, v := range sampled {
		result[i] = valueToBlock(v, lo, hi)
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(string(result))
}

// DailyCounts buckets timestamps into the last days days ending at now,
// oldest first. Timestamps outside the window are ignored.
func DailyCounts(times []time.Time, now time.Time, days int) []float64 {
	if days <= 0 {
		return nil
	}
	counts := make([]float64, days)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, t := range times {
		t = t.In(now.Location())
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
		ago := int(today.Sub(day).Hours() / 24)
		if ago < 0 || ago >= days {
			continue
		}
		counts[days-1-ago]++
	}
	return counts
}

// sampleValues pads on the left with zeros or samples down to width
func sampleValues(values []float64, width int) []float64 {
	if len(values) == width {
		return values
	}

	result := make([]float64, width)
	if len(values) < width {
		copy(result[width-len(values):], values)
		return result
	}

	ratio := float64(len(values)) / float64(width)
	for i := range width {
		idx := min(int(float64(i)*ratio), len(values)-1)
		result[i] = values[idx]
	}
	return result
}

func valueToBlock(value, lo, hi float64) rune {
	if hi == lo {
		return SparklineBlocks[len(SparklineBlocks)/2]
	}
	normalized := (value - lo) / (hi - lo)
	idx := int(normalized * float64(len(SparklineBlocks)-1))
	idx = min(max(idx, 0), len(SparklineBlocks)-1)
	return SparklineBlocks[idx]
}
