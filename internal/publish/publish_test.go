package publish

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emwin_parser/internal/goes"
	"emwin_parser/internal/storage"
)

func testRecord() storage.Record {
	return storage.Record{
		BulletinID: uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		Received:   time.Date(2024, 3, 15, 17, 21, 0, 0, time.UTC),
		TTAAii:     "FTUS80",
		Origin:     "KWBC",
		ReportType: "taf",
		Stations:   []string{"KIAD"},
		ReportJSON: `{"items":[{"station":"KIAD"}]}`,
		Recovered:  1,
	}
}

func TestReportSubject(t *testing.T) {
	rec := testRecord()
	assert.Equal(t, "emwin.report.taf.KWBC", ReportSubject("emwin", rec))

	rec.Origin = ""
	assert.Equal(t, "emwin.report.taf.unknown", ReportSubject("emwin", rec))
}

func TestImageSubject(t *testing.T) {
	fn, err := goes.Parse("/OR_ABI-L2-CMIPM1-M6C02_G18_s20223200122250_e20223200122308_c20223200122372.jpg")
	require.NoError(t, err)
	rec := storage.ImageRecord{ID: uuid.New(), FileName: fn}

	assert.Equal(t, "emwin.image.GOES18."+fn.ShortName.Product.String(), ImageSubject("emwin", rec))
}

func TestReportMessage(t *testing.T) {
	rec := testRecord()
	msg, err := reportMessage("emwin-reports", rec)
	require.NoError(t, err)

	assert.Equal(t, "emwin-reports", msg.Topic)
	assert.Equal(t, []byte(rec.BulletinID.String()), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "report_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("taf"), msg.Headers[0].Value)
	assert.Equal(t, []byte("2024-03-15T17:21:00Z"), msg.Headers[1].Value)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, rec.BulletinID, env.BulletinID)
	assert.Equal(t, []string{"KIAD"}, env.Stations)
	assert.JSONEq(t, rec.ReportJSON, string(env.Report))
}

func TestEncodeReportWithoutJSON(t *testing.T) {
	rec := testRecord()
	rec.ReportJSON = ""
	data, err := encodeReport(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"report":null`)
}

func TestKafkaImageTopicDefault(t *testing.T) {
	k := NewKafka(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "emwin"})
	defer func() { _ = k.Close() }()
	assert.Equal(t, "emwin", k.imageTopic)
}
