package stats

import (
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/term"

	"github.com/hello97-gg/hallotype/internal/model"
)

const terminalWidthBackup = 80

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderResult prints one completed session with its per-second WPM curve.
func RenderResult(w io.Writer, r model.ScoreResult) error {
	lines := []string{
		fmt.Sprintf("WPM: %d", r.WPM),
		fmt.Sprintf("Raw WPM: %d", r.RawWPM),
		fmt.Sprintf("Accuracy: %d%%", r.Accuracy),
		fmt.Sprintf("Consistency: %d%%", r.Consistency),
		fmt.Sprintf("Errors: %d (incorrect %d, missed %d, extra %d)",
			r.Errors, r.CharStats.Incorrect, r.CharStats.Missed, r.CharStats.Extra),
		fmt.Sprintf("Characters: %d typed over %ds (%s)", r.TotalChars, r.TimeLimit, r.Tier),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(r.Snapshots) > 1 {
		wpms := make([]float64, len(r.Snapshots))
		for i, s := range r.Snapshots {
			wpms[i] = float64(s.CorrectWPM)
		}
		width := terminalWidth() - 5
		if _, err := fmt.Fprintf(w, "WPM: %s\n", Sparkline(Resample(wpms, width))); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints a summary, a recency-ordered table, and a learning
// curve for the stored session history.
func RenderHistory(w io.Writer, items []model.HistoryItem, curveWindow int) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}

	var totalWPM, totalAcc float64
	bestWPM := 0
	for _, it := range items {
		totalWPM += float64(it.WPM)
		totalAcc += float64(it.Accuracy)
		if it.WPM > bestWPM {
			bestWPM = it.WPM
		}
	}
	count := float64(len(items))
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", len(items)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg WPM: %.2f\n", totalWPM/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best WPM: %d\n", bestWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.2f%%\n\n", totalAcc/count); err != nil {
		return err
	}

	headers := []string{"When", "WPM", "Raw", "Accuracy", "Consistency", "Time", "Tier"}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Timestamp.Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", it.WPM),
			fmt.Sprintf("%d", it.RawWPM),
			fmt.Sprintf("%d%%", it.Accuracy),
			fmt.Sprintf("%d%%", it.Consistency),
			fmt.Sprintf("%ds", it.TimeLimit),
			string(it.Tier),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	wpms := make([]float64, len(items))
	for i, it := range items {
		wpms[i] = float64(it.WPM)
	}
	curve := MovingAverage(wpms, curveWindow)
	width := terminalWidth() - 7
	if _, err := fmt.Fprintf(w, "\nCurve: %s\n", Sparkline(Resample(curve, width))); err != nil {
		return err
	}
	return nil
}

// TopResults returns the n best history items by WPM, ties broken by
// accuracy then recency.
func TopResults(items []model.HistoryItem, n int) []model.HistoryItem {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	sorted := make([]model.HistoryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WPM != sorted[j].WPM {
			return sorted[i].WPM > sorted[j].WPM
		}
		if sorted[i].Accuracy != sorted[j].Accuracy {
			return sorted[i].Accuracy > sorted[j].Accuracy
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
