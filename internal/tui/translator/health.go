package translator

import (
	"net/http"
	"strings"
	"time"

	"github.com/msto63/dolmetscher/pkg/core/health"
	"github.com/msto63/dolmetscher/pkg/core/version"
)

// Check names shown by the status bar and the doctor command
const (
	CheckService     = "service"
	CheckRecognizer  = "recognizer"
	CheckSynthesizer = "synthesizer"
)

// HealthOptions describes what the health registry checks
type HealthOptions struct {
	ServiceURL string
	// RecognizerBackend is "local", "stream" or "none"
	RecognizerBackend    string
	RecognizerURL        string
	RecognitionAvailable bool
	RecognitionDetail    string
	SynthesisAvailable   bool
	SynthesisDetail      string
}

// NewHealthRegistry builds the checks for the translation service and
// both speech capabilities
func NewHealthRegistry(opts HealthOptions) *health.Registry {
	reg := health.NewRegistry(version.Name, version.App)

	client := &http.Client{Timeout: 5 * time.Second}
	reg.Register(health.HTTPCheck(CheckService, strings.TrimRight(opts.ServiceURL, "/")+"/api/languages", client))

	switch {
	case !opts.RecognitionAvailable:
		reg.Register(health.CapabilityCheck(CheckRecognizer, false, opts.RecognitionDetail))
	case opts.RecognizerBackend == "local" || opts.RecognizerBackend == "stream":
		reg.Register(health.TCPCheck(CheckRecognizer, opts.RecognizerURL))
	default:
		reg.Register(health.CapabilityCheck(CheckRecognizer, true, opts.RecognitionDetail))
	}

	reg.Register(health.CapabilityCheck(CheckSynthesizer, opts.SynthesisAvailable, opts.SynthesisDetail))
	return reg
}
