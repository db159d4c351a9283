// package formatter renders score boards and play history for terminal output
// and exports them to CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/songsnap/internal/models"
)

// FormatDate renders a played-at timestamp relative to now: "Today",
// "Yesterday", a month-day for the current year, and month-day-year beyond.
func FormatDate(t, now time.Time) string {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()

	if ty == ny && tm == nm && td == nd {
		return "Today"
	}

	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if ty == yy && tm == ym && td == yd {
		return "Yesterday"
	}

	if ty == ny {
		return t.Format("Jan 2")
	}

	return t.Format("Jan 2, 2006")
}

// Accuracy renders correct/total as a whole percentage.
func Accuracy(correct, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(float64(correct)/float64(total)*100+0.5))
}

// HighScoreTable renders the high-score board as aligned text, best first.
func HighScoreTable(scores []models.HighScore, now time.Time) string {
	var buf bytes.Buffer

	if len(scores) == 0 {
		buf.WriteString("No high scores yet. Play a game!\n")
		return buf.String()
	}

	fmt.Fprintf(&buf, "%-4s %-8s %-9s %-5s %s\n", "Rank", "Score", "Correct", "Acc", "Date")
	for i, entry := range scores {
		fmt.Fprintf(&buf, "%-4d %-8d %2d/%-6d %-5s %s\n",
			i+1,
			entry.Score,
			entry.Correct,
			entry.Total,
			Accuracy(entry.Correct, entry.Total),
			FormatDate(entry.PlayedAt, now),
		)
	}

	return buf.String()
}

// HistoryText renders the play history as text, most recent first.
func HistoryText(records []models.GameRecord, now time.Time) string {
	var buf bytes.Buffer

	if len(records) == 0 {
		buf.WriteString("No games played yet.\n")
		return buf.String()
	}

	for _, record := range records {
		fmt.Fprintf(&buf, "%s  %d pts  %d/%d correct (%s)\n",
			FormatDate(record.PlayedAt, now),
			record.Score,
			record.Correct,
			record.Total,
			Accuracy(record.Correct, record.Total),
		)
	}

	return buf.String()
}

// ExportHistoryCSV converts play history to CSV with one row per round,
// prefixed by the game's date and totals.
func ExportHistoryCSV(records []models.GameRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Date", "Game Score", "Track", "Artist", "Guessed", "Points"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		date := record.PlayedAt.Format("2006-01-02 15:04")
		for _, round := range record.Rounds {
			row := []string{
				date,
				strconv.Itoa(record.Score),
				round.TrackName,
				round.Artist,
				strconv.FormatBool(round.Correct),
				strconv.Itoa(round.Points),
			}
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportHighScoresCSV converts the high-score board to CSV.
func ExportHighScoresCSV(scores []models.HighScore) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Score", "Correct", "Total", "Date"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, entry := range scores {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(entry.Score),
			strconv.Itoa(entry.Correct),
			strconv.Itoa(entry.Total),
			entry.PlayedAt.Format("2006-01-02 15:04"),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteHistoryExport writes the play history CSV to disk.
//
// Defaults to songsnap_history.csv when no path is given.
func WriteHistoryExport(records []models.GameRecord, filepath string) (string, error) {
	if filepath == "" {
		filepath = "songsnap_history.csv"
	}

	data, err := ExportHistoryCSV(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteHighScoresExport writes the high-score CSV to disk.
//
// Defaults to songsnap_scores.csv when no path is given.
func WriteHighScoresExport(scores []models.HighScore, filepath string) (string, error) {
	if filepath == "" {
		filepath = "songsnap_scores.csv"
	}

	data, err := ExportHighScoresCSV(scores)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}
