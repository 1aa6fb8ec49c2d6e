package anomaly

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreNoHistoryYieldsZeroZScores(t *testing.T) {
	r := Score(5, 100, 14, nil)
	require.Equal(t, 0.0, r.ZFiles)
	require.Equal(t, 0.0, r.ZLines)
	require.False(t, r.OffHours)
	require.Equal(t, 0.0, r.Score)
	require.Empty(t, r.Flags)
}

func TestScoreDetectsFilesSpike(t *testing.T) {
	var history []Sample
	for i := 0; i < 50; i++ {
		// Alternating 1/3 files: mean 2, population sigma 1 (a constant
		// history has sigma 0, which yields z 0).
		history = append(history, Sample{FilesChanged: 1 + 2*(i%2), LinesChanged: 20, Hour: 10, HasHour: true})
	}
	r := Score(40, 20, 10, history)
	require.GreaterOrEqual(t, r.ZFiles, HighSpikeThreshold)
	require.Contains(t, r.Flags, "files_spike")
	require.LessOrEqual(t, r.Score, 10.0)
}

func TestScoreDetectsOffHours(t *testing.T) {
	var history []Sample
	for i := 0; i < 30; i++ {
		history = append(history, Sample{FilesChanged: 2, LinesChanged: 20, Hour: 14, HasHour: true})
	}
	r := Score(2, 20, 3, history)
	require.True(t, r.OffHours)
	require.Contains(t, r.Flags, "off_hours")
}

func TestScoreCapsAtTen(t *testing.T) {
	var history []Sample
	for i := 0; i < 30; i++ {
		history = append(history, Sample{FilesChanged: 1 + i%2, LinesChanged: 1 + i%2, Hour: 0, HasHour: true})
	}
	r := Score(500, 5000, 12, history)
	require.Equal(t, 10.0, r.Score)
}

func TestFracOffHoursWrapsAroundMidnight(t *testing.T) {
	hist := []int{23, 23, 23}
	require.Equal(t, 0.0, fracOffHours(hist, 0))
}

func TestMeanStdPopulationVariance(t *testing.T) {
	mean, sd := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.InDelta(t, 5.0, mean, 1e-9)
	require.InDelta(t, 2.0, sd, 1e-9)
}
