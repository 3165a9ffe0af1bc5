// Package publish sends decoded reports and image records to message
// brokers. Publishers implement storage.Sink so they join the same fan-out
// as the databases.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"emwin_parser/internal/storage"
)

// Envelope is the JSON body of a published report.
type Envelope struct {
	BulletinID uuid.UUID       `json:"bulletin_id"`
	ReportType string          `json:"report_type"`
	TTAAii     string          `json:"ttaaii"`
	Origin     string          `json:"origin"`
	Stations   []string        `json:"stations,omitempty"`
	Received   time.Time       `json:"received"`
	Recovered  int             `json:"recovered,omitempty"`
	Report     json.RawMessage `json:"report"`
}

// ImageEnvelope is the JSON body of a published GOES image record.
type ImageEnvelope struct {
	ID        uuid.UUID `json:"id"`
	Path      string    `json:"path"`
	ShortName string    `json:"short_name"`
	Satellite string    `json:"satellite"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

func encodeReport(r storage.Record) ([]byte, error) {
	report := json.RawMessage(r.ReportJSON)
	if len(report) == 0 {
		report = json.RawMessage("null")
	}
	data, err := json.Marshal(Envelope{
		BulletinID: r.BulletinID,
		ReportType: r.ReportType,
		TTAAii:     r.TTAAii,
		Origin:     r.Origin,
		Stations:   r.Stations,
		Received:   r.Received,
		Recovered:  r.Recovered,
		Report:     report,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize %s report: %w", r.ReportType, err)
	}
	return data, nil
}

func encodeImage(r storage.ImageRecord) ([]byte, error) {
	data, err := json.Marshal(ImageEnvelope{
		ID:        r.ID,
		Path:      r.Path,
		ShortName: r.ShortName.String(),
		Satellite: r.Satellite.String(),
		Start:     r.Start,
		End:       r.End,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize image record: %w", err)
	}
	return data, nil
}

// ReportSubject returns the subject a report is published on, for example
// emwin.report.taf.KWBC.
func ReportSubject(prefix string, r storage.Record) string {
	origin := r.Origin
	if origin == "" {
		origin = "unknown"
	}
	return strings.Join([]string{prefix, "report", r.ReportType, origin}, ".")
}

// ImageSubject returns the subject an image record is published on, for
// example emwin.image.GOES16.CMIP.
func ImageSubject(prefix string, r storage.ImageRecord) string {
	return strings.Join([]string{prefix, "image", r.Satellite.String(), r.ShortName.Product.String()}, ".")
}
