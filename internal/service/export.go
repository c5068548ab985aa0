package service

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/pkordes/travel-tracker/internal/domain"
	"github.com/pkordes/travel-tracker/internal/tripfile"
)

// TripLister is the read side of TripService that ExportService needs.
type TripLister interface {
	List(ctx context.Context) ([]domain.Trip, error)
}

// ExportService writes the whole collection in the flat-file format.
type ExportService struct {
	trips TripLister
}

// NewExportService constructs an ExportService reading from trips.
func NewExportService(trips TripLister) *ExportService {
	return &ExportService{trips: trips}
}

// Export writes one record per line, newline-terminated, in repository order,
// and returns the number of records written.
func (s *ExportService) Export(ctx context.Context, w io.Writer) (int, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	bw := bufio.NewWriter(w)
	for _, t := range trips {
		if _, err := bw.WriteString(tripfile.FormatLine(t) + "\n"); err != nil {
			return 0, fmt.Errorf("service.ExportService.Export: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("service.ExportService.Export: flush: %w", err)
	}
	return len(trips), nil
}
