package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/teller/model"
)

// Service renders reports.
type Service struct {
	fs        afs.Service
	fsOptions []storage.Option
}

// MemoryMap writes one line per page.
func (s *Service) MemoryMap(w io.Writer, pages []model.PageInfo) error {
	if _, err := fmt.Fprintln(w, "Memory Map:"); err != nil {
		return err
	}
	for _, page := range pages {
		var err error
		if page.Used {
			_, err = fmt.Fprintf(w, "Page %d: Used, Last Access Time: %d\n", page.Index, page.LastAccessTime)
		} else {
			_, err = fmt.Fprintf(w, "Page %d: Free\n", page.Index)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Gantt writes one bar per scheduled transaction, one dash per time unit.
func (s *Service) Gantt(w io.Writer, schedule []model.ScheduleEntry) error {
	if _, err := fmt.Fprintln(w, "Gantt Chart:"); err != nil {
		return err
	}
	for _, entry := range schedule {
		width := entry.EndTime - entry.StartTime
		if width < 0 {
			width = 0
		}
		if _, err := fmt.Fprintf(w, "T%d: [%s]\n", entry.TransactionID, strings.Repeat("-", width)); err != nil {
			return err
		}
	}
	return nil
}

// Metrics writes the accounting figures, utilization as a percentage.
func (s *Service) Metrics(w io.Writer, metrics *model.Metrics) error {
	if metrics == nil {
		metrics = &model.Metrics{}
	}
	_, err := fmt.Fprintf(w, "Average Waiting Time: %.2f seconds\nCPU Utilization: %.2f%%\n",
		metrics.AverageWaitingTime, metrics.CPUUtilization*100)
	return err
}

// Render returns the full report.
func (s *Service) Render(pages []model.PageInfo, schedule []model.ScheduleEntry, metrics *model.Metrics) ([]byte, error) {
	buffer := new(bytes.Buffer)
	if err := s.MemoryMap(buffer, pages); err != nil {
		return nil, err
	}
	if err := s.Gantt(buffer, schedule); err != nil {
		return nil, err
	}
	if err := s.Metrics(buffer, metrics); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Upload stores a rendered report at URL.
func (s *Service) Upload(ctx context.Context, URL string, data []byte) error {
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data), s.fsOptions...); err != nil {
		return fmt.Errorf("failed to upload report to %v: %w", URL, err)
	}
	return nil
}

// New creates a report service.
func New(fs afs.Service, options ...storage.Option) *Service {
	return &Service{fs: fs, fsOptions: options}
}
