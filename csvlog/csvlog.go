package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

var header = []string{
	"Timestamp", "Mode", "Model",
	"Input Words", "Output Words",
	"Similarity", "Change %",
	"Grammar Issues", "Punctuation Issues",
	"Logical Flow Score", "Readability Score",
}

// Record is one appended result row.
type Record struct {
	Timestamp         time.Time
	Mode              string
	Model             string
	InputWords        int
	OutputWords       int
	Similarity        float64
	PercentChanged    float64
	GrammarIssues     int
	PunctuationIssues int
	LogicalFlow       float64
	Readability       float64
}

// Logger appends result rows to a CSV file. A mutex keeps writers exclusive;
// the lock is scoped to one append and released on every path.
type Logger struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// New creates the log directory and writes the header row if the file does
// not exist yet.
func New(path string, logger *zap.Logger) (*Logger, error) {
	l := &Logger{path: path, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		if err := l.writeHeader(); err != nil {
			return nil, err
		}
		logger.Info("created CSV log file", zap.String("path", path))
	}
	return l, nil
}

func (l *Logger) writeHeader() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create CSV log file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Append writes one record, creating the file with a header first if it was
// removed since startup.
func (l *Logger) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		if err := l.writeHeader(); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV log file: %w", err)
	}
	defer f.Close()

	row := []string{
		r.Timestamp.Format("2006-01-02 15:04:05"),
		r.Mode,
		r.Model,
		strconv.Itoa(r.InputWords),
		strconv.Itoa(r.OutputWords),
		strconv.FormatFloat(r.Similarity, 'f', 4, 64),
		strconv.FormatFloat(r.PercentChanged, 'f', 2, 64),
		strconv.Itoa(r.GrammarIssues),
		strconv.Itoa(r.PunctuationIssues),
		strconv.FormatFloat(r.LogicalFlow, 'f', 4, 64),
		strconv.FormatFloat(r.Readability, 'f', 2, 64),
	}

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV row: %w", err)
	}

	l.logger.Debug("logged result to CSV", zap.String("path", l.path))
	return nil
}
