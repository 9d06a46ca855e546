package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/torosent/granita/internal/threshold"
)

func TestGenerateHTMLReport(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, sampleReport(t)); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Granita Run Report",
		"01RUN",
		"badge-success",
		"badge-error",
		"SKIPPED",
		"Latency Statistics",
		"Protocol Breakdown",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in HTML report", want)
		}
	}
}

func TestGenerateHTMLReportEscapesErrors(t *testing.T) {
	rep := Report{Error: "<script>alert(1)</script>"}

	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, rep); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)</script>") {
		t.Fatal("expected error text to be escaped")
	}
	if !strings.Contains(buf.String(), "No requests were sent.") {
		t.Error("expected empty-state message")
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "HTML", sampleReport(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "</html>") {
		t.Fatal("expected complete document")
	}
}

func TestGenerateHTMLReportThresholds(t *testing.T) {
	rep := sampleReport(t)
	rep.ApplyThresholds([]threshold.Result{{Raw: "req_failed:rate < 0.1", Actual: 0.5}})

	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, rep); err != nil {
		t.Fatalf("GenerateHTMLReport() error = %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<h2>Thresholds</h2>") {
		t.Error("expected thresholds section")
	}
	if !strings.Contains(html, "req_failed:rate &lt; 0.1") {
		t.Error("expected escaped threshold expression")
	}
	if !strings.Contains(html, "0.50") {
		t.Error("expected formatted actual value")
	}
}
