package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "test passed",
		}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", result.Status)
	}
	if result.Message != "test passed" {
		t.Errorf("Message = %v, want 'test passed'", result.Message)
	}
}

func TestRegistry_RegisterAndCheck(t *testing.T) {
	registry := NewRegistry("dolmetscher", "1.0.0")

	registry.Register(NewChecker("service", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "reachable"}
	}))
	registry.Register(NewChecker("recognizer", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "reachable"}
	}))

	report := registry.Check(context.Background())

	if report.Service != "dolmetscher" {
		t.Errorf("Service = %v, want dolmetscher", report.Service)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("Checks count = %v, want 2", len(report.Checks))
	}
	// sorted by name
	if report.Checks[0].Name != "recognizer" || report.Checks[1].Name != "service" {
		t.Errorf("Checks order = %s, %s", report.Checks[0].Name, report.Checks[1].Name)
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("dolmetscher", "1.0.0")
			for i, s := range tt.statuses {
				s := s
				registry.Register(NewChecker(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: s}
				}))
			}

			if got := registry.Check(context.Background()).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_CheckWithTimeout(t *testing.T) {
	registry := NewRegistry("dolmetscher", "1.0.0")
	registry.Register(NewChecker("slow", func(ctx context.Context) CheckResult {
		select {
		case <-ctx.Done():
			return CheckResult{Status: StatusUnhealthy, Message: ctx.Err().Error()}
		case <-time.After(5 * time.Second):
			return CheckResult{Status: StatusHealthy}
		}
	}))

	report := registry.CheckWithTimeout(50 * time.Millisecond)
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", report.Status)
	}
}

func TestHTTPCheck(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	tests := []struct {
		name string
		url  string
		want Status
	}{
		{"ok", ok.URL, StatusHealthy},
		{"server error", broken.URL, StatusUnhealthy},
		{"unreachable", "http://127.0.0.1:1/api/languages", StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HTTPCheck("service", tt.url, nil).Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
		})
	}
}

func TestTCPCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	result := TCPCheck("recognizer", "ws://"+ln.Addr().String()+"/v1/listen").Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy (%s)", result.Status, result.Message)
	}
	if result.Message != ln.Addr().String() {
		t.Errorf("Message = %v, want %v", result.Message, ln.Addr().String())
	}
}

func TestDialAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:9000", "localhost:9000"},
		{"ws://asr.local/v1/listen", "asr.local:80"},
		{"wss://asr.local/v1/listen", "asr.local:443"},
		{"http://127.0.0.1:5000", "127.0.0.1:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := dialAddress(tt.in)
			if err != nil {
				t.Fatalf("dialAddress() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("dialAddress(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCapabilityCheck(t *testing.T) {
	if got := CapabilityCheck("synthesizer", true, "espeak-ng").Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("available: Status = %v, want healthy", got.Status)
	}
	if got := CapabilityCheck("synthesizer", false, "not found").Check(context.Background()); got.Status != StatusDegraded {
		t.Errorf("absent: Status = %v, want degraded", got.Status)
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Service: "dolmetscher",
		Version: "1.0.0",
		Status:  StatusDegraded,
		Checks: []CheckResult{
			{Name: "synthesizer", Status: StatusDegraded, Message: "not found"},
		},
	}

	s := report.String()
	for _, want := range []string{"dolmetscher v1.0.0: degraded", "synthesizer", "not found"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}

	if _, ok := report.Result("synthesizer"); !ok {
		t.Error("Result(synthesizer) not found")
	}
	if _, ok := report.Result("service"); ok {
		t.Error("Result(service) should not exist")
	}
}
