// Package anomaly scores a commit's files/lines-changed and commit-hour
// against a contributor's own recent history, grounded on the original
// tool's score_commit_anomaly / _mean_std.
package anomaly

import "math"

// DefaultWindow is the number of a contributor's most recent prior
// commits considered, matching the original tool's k=200 default.
const DefaultWindow = 200

// HighSpikeThreshold marks a z-score extreme enough to flag, matching
// the original's z >= 3.0 cutoff for both files and lines.
const HighSpikeThreshold = 3.0

// OffHoursFraction marks the fraction of a contributor's history that
// must fall outside this commit's hour ± 1 window for the commit to be
// flagged off_hours.
const OffHoursFraction = 0.95

// Sample is one prior commit's rollup, used to build the z-score
// baseline for a contributor.
type Sample struct {
	FilesChanged int
	LinesChanged int
	Hour         int
	HasHour      bool
}

// Result is the full anomaly verdict stored back onto the Commit node.
type Result struct {
	ZFiles       float64
	ZLines       float64
	OffHours     bool
	Score        float64
	Flags        []string
}

// Score computes the anomaly verdict for a commit with the given
// files/lines-changed and hour, against history (the contributor's
// most recent prior commits, already windowed to DefaultWindow or a
// caller-chosen k).
func Score(filesNow, linesNow, hourNow int, history []Sample) Result {
	files := make([]float64, len(history))
	lines := make([]float64, len(history))
	var hours []int
	for i, h := range history {
		files[i] = float64(h.FilesChanged)
		lines[i] = float64(h.LinesChanged)
		if h.HasHour {
			hours = append(hours, h.Hour)
		}
	}

	muF, sdF := meanStd(files)
	muL, sdL := meanStd(lines)

	zFiles := zscore(float64(filesNow), muF, sdF)
	zLines := zscore(float64(linesNow), muL, sdL)

	offHours := fracOffHours(hours, hourNow) > OffHoursFraction

	score := math.Abs(zFiles) + 0.5*math.Abs(zLines)
	if offHours {
		score += 2.0
	}
	if score > 10.0 {
		score = 10.0
	}

	var flags []string
	if zFiles >= HighSpikeThreshold {
		flags = append(flags, "files_spike")
	}
	if zLines >= HighSpikeThreshold {
		flags = append(flags, "lines_spike")
	}
	if offHours {
		flags = append(flags, "off_hours")
	}

	return Result{ZFiles: zFiles, ZLines: zLines, OffHours: offHours, Score: score, Flags: flags}
}

// meanStd returns the population mean and standard deviation of vals
// (divisor is max(1, n), not n-1, matching the original's _mean_std).
func meanStd(vals []float64) (mean, stddev float64) {
	n := len(vals)
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(n)

	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	divisor := n
	if divisor < 1 {
		divisor = 1
	}
	variance := sq / float64(divisor)
	return mean, math.Sqrt(variance)
}

func zscore(x, mean, stddev float64) float64 {
	if stddev == 0 {
		return 0
	}
	return (x - mean) / stddev
}

// fracOffHours returns the fraction of hourHist that falls outside
// {h-1, h, h+1} (mod 24). An empty history or missing hour yields 0.
func fracOffHours(hourHist []int, h int) float64 {
	if len(hourHist) == 0 {
		return 0
	}
	neighbors := map[int]bool{
		mod24(h - 1): true,
		mod24(h):     true,
		mod24(h + 1): true,
	}
	good := 0
	for _, x := range hourHist {
		if neighbors[mod24(x)] {
			good++
		}
	}
	return 1.0 - float64(good)/float64(len(hourHist))
}

func mod24(h int) int {
	m := h % 24
	if m < 0 {
		m += 24
	}
	return m
}
