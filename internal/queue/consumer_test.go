package queue

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteRegistrationLine(t *testing.T) {
	body, _ := json.Marshal(RegistrationCompletedEvent{
		RegistrationID: 9,
		Reference:      "c0ffee",
		SiteName:       "Lakeside",
		LicensePlate:   "AB12CD",
		StayType:       "night",
		NrOfNights:     2,
		NrOfVisitors:   3,
		Electricity:    true,
		TotalCents:     4150,
		CompletedAt:    "2026-07-01T18:00:00Z",
	})
	var buf bytes.Buffer
	if err := WriteRegistrationLine(&buf, body); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `[2026-07-01T18:00:00Z] Registration completed | reference=c0ffee | registration_id=9 | site="Lakeside" | plate=AB12CD | stay=night | nights=2 | visitors=3 | electricity=yes | total=4150 cents` + "\n"
	if buf.String() != want {
		t.Fatalf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestWriteRegistrationLineRejectsGarbage(t *testing.T) {
	if err := WriteRegistrationLine(&bytes.Buffer{}, []byte("nope")); err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestAppendToLogCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	body, _ := json.Marshal(RegistrationCompletedEvent{Reference: "r1"})
	if err := appendToLog(dir, body); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := appendToLog(dir, body); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "registration.log"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(data), "reference=r1"); n != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", n, data)
	}
}

func TestBrokerURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
	if got := BrokerURL(); got != "amqp://u:p@mq:5672/" {
		t.Fatalf("got %q", got)
	}
}
