// Package storage persists decoded reports and GOES image file records.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"emwin_parser/internal/bulletin"
	"emwin_parser/internal/goes"
	"emwin_parser/internal/registry"
	"emwin_parser/internal/wmo"
)

// Record is one decoded bulletin, keyed by the caller-assigned bulletin ID.
type Record struct {
	BulletinID uuid.UUID
	Source     string
	Received   time.Time
	// Reference anchors the day-of-month times of the report.
	Reference  time.Time
	TTAAii     string
	Origin     string
	Family     string
	ReportType string
	Parser     string
	Stations   []string
	RawText    string
	ReportJSON string
	Recovered  int

	report registry.Report
}

// NewRecord builds the stored form of a dispatch result.
func NewRecord(b *bulletin.Bulletin, res *registry.Result) (Record, error) {
	data, err := json.Marshal(res.Report)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s report: %w", res.Report.Type(), err)
	}
	family := "unclassified"
	if b.Designator != nil {
		family = wmo.FamilyOf(b.Designator).String()
	}
	return Record{
		BulletinID: b.ID,
		Source:     b.Source,
		Received:   b.Received,
		Reference:  b.Reference,
		TTAAii:     b.Heading.TTAAii,
		Origin:     b.Heading.Origin,
		Family:     family,
		ReportType: res.Report.Type(),
		Parser:     res.Parser,
		Stations:   registry.Stations(res.Report),
		RawText:    b.Body,
		ReportJSON: string(data),
		Recovered:  len(res.Recovered),
		report:     res.Report,
	}, nil
}

// Report returns the decoded report the record was built from. It is nil for
// records read back from a store.
func (r Record) Report() registry.Report {
	return r.report
}

// ImageRecord is a GOES-R image file seen by the watcher.
type ImageRecord struct {
	ID   uuid.UUID
	Path string
	goes.FileName
}

// Sink accepts completed records.
type Sink interface {
	StoreReport(ctx context.Context, r Record) error
	StoreImage(ctx context.Context, r ImageRecord) error
	Close() error
}

// Fanout writes every record to each sink in turn. A failing sink does not
// stop the others; their errors are combined.
type Fanout []Sink

func (f Fanout) StoreReport(ctx context.Context, r Record) error {
	var result *multierror.Error
	for _, s := range f {
		if err := s.StoreReport(ctx, r); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (f Fanout) StoreImage(ctx context.Context, r ImageRecord) error {
	var result *multierror.Error
	for _, s := range f {
		if err := s.StoreImage(ctx, r); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (f Fanout) Close() error {
	var result *multierror.Error
	for _, s := range f {
		if err := s.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
