package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/api"
)

func runCommand(t *testing.T, server *httptest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--address", server.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(api.StatusResponse{
			Running:      true,
			BatchFile:    "/data/current_scan.csv",
			DataRows:     3,
			SnipeEnabled: true,
			ArchiveDir:   "/data/completed_scans",
			Version:      "1.0.0",
		})
	}))
	t.Cleanup(server.Close)

	out, err := runCommand(t, server, "status")
	if err != nil {
		t.Fatalf("status command: %v", err)
	}
	if !strings.Contains(out, "Running:        yes") {
		t.Fatalf("expected running line, got:\n%s", out)
	}
	if !strings.Contains(out, "Pending rows:   3") {
		t.Fatalf("expected pending rows line, got:\n%s", out)
	}
}

func TestAddCommandReportsDuplicate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lookup":
			json.NewEncoder(w).Encode(api.LookupResponse{
				RecordPayload: api.RecordPayload{EquipmentType: "Computer", SerialNumber: "SER1"},
			})
		case "/api/add":
			json.NewEncoder(w).Encode(api.AddResponse{OK: false, Error: "duplicate serial detected in this batch"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	_, err := runCommand(t, server, "add", "SER1")
	if err == nil || !strings.Contains(err.Error(), "duplicate serial") {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("reset should not reach the daemon without --yes")
	}))
	t.Cleanup(server.Close)

	_, err := runCommand(t, server, "reset")
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}

func TestMergeRecordPrefersOverrides(t *testing.T) {
	resolved := api.RecordPayload{
		EquipmentType:   "Laptop",
		ItemDescription: "HP EliteBook 840",
		SerialNumber:    "SER1",
		TempleTag:       "CPH1",
	}
	override := api.RecordPayload{EquipmentType: "Monitor", TempleTag: "CPH2"}

	merged := mergeRecord(resolved, override)
	if merged.EquipmentType != "Monitor" {
		t.Fatalf("expected type override, got %q", merged.EquipmentType)
	}
	if merged.TempleTag != "CPH2" {
		t.Fatalf("expected tag override, got %q", merged.TempleTag)
	}
	if merged.ItemDescription != "HP EliteBook 840" || merged.SerialNumber != "SER1" {
		t.Fatalf("expected resolved fields kept, got %+v", merged)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") {
		t.Fatalf("expected cell content in table:\n%s", out)
	}
}
