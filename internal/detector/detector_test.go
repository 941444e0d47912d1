package detector

import (
	"reflect"
	"strings"
	"testing"

	"dlpgate/internal/core"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name              string
		text              string
		wantRedacted      string
		wantTypes         []string
		wantCount         int
		wantLevel         core.SensitivityLevel
		wantRequiresLocal bool
	}{
		{
			name:         "empty",
			text:         "",
			wantRedacted: "",
			wantTypes:    []string{},
			wantLevel:    core.LevelPublic,
		},
		{
			name:         "whitespace only",
			text:         "   ",
			wantRedacted: "   ",
			wantTypes:    []string{},
			wantLevel:    core.LevelPublic,
		},
		{
			name:         "plain greeting",
			text:         "Hola, ¿cómo estás?",
			wantRedacted: "Hola, ¿cómo estás?",
			wantTypes:    []string{},
			wantLevel:    core.LevelPublic,
		},
		{
			name:         "keyword only",
			text:         "El plan es confidencial",
			wantRedacted: "El plan es confidencial",
			wantTypes:    []string{},
			wantLevel:    core.LevelInternal,
		},
		{
			name:              "dni",
			text:              "Mi DNI es 12345678Z",
			wantRedacted:      "Mi DNI es *****8Z",
			wantTypes:         []string{"dni"},
			wantCount:         1,
			wantLevel:         core.LevelTopSecret,
			wantRequiresLocal: true,
		},
		{
			name:              "credit card",
			text:              "Pago con tarjeta 4532 1234 5678 9010",
			wantRedacted:      "Pago con tarjeta **** **** **** 9010",
			wantTypes:         []string{"credit_card"},
			wantCount:         1,
			wantLevel:         core.LevelTopSecret,
			wantRequiresLocal: true,
		},
		{
			name:              "email",
			text:              "Escríbeme a juan.perez@empresa.es",
			wantRedacted:      "Escríbeme a j***@empresa.es",
			wantTypes:         []string{"email"},
			wantCount:         1,
			wantLevel:         core.LevelTopSecret,
			wantRequiresLocal: true,
		},
		{
			name:              "keyword plus structural match",
			text:              "Documento confidencial: DNI 12345678Z",
			wantRedacted:      "Documento confidencial: DNI *****8Z",
			wantTypes:         []string{"dni"},
			wantCount:         1,
			wantLevel:         core.LevelTopSecret,
			wantRequiresLocal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)

			if got.RedactedText != tt.wantRedacted {
				t.Errorf("RedactedText = %q, want %q", got.RedactedText, tt.wantRedacted)
			}
			if !reflect.DeepEqual(got.DetectedTypes, tt.wantTypes) {
				t.Errorf("DetectedTypes = %v, want %v", got.DetectedTypes, tt.wantTypes)
			}
			if got.MatchCount != tt.wantCount {
				t.Errorf("MatchCount = %d, want %d", got.MatchCount, tt.wantCount)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("Level = %s, want %s", got.Level, tt.wantLevel)
			}
			if got.RequiresLocal != tt.wantRequiresLocal {
				t.Errorf("RequiresLocal = %v, want %v", got.RequiresLocal, tt.wantRequiresLocal)
			}
		})
	}
}

// A spaced IBAN also matches the card pattern on its inner digit groups. The
// more specific card pattern masks first; the IBAN occurrence is still counted
// from the raw scan even though its literal is gone from the working copy.
func TestDetectOverlappingPatterns(t *testing.T) {
	got := Detect("ES91 2100 0418 4502 0005 1332")

	if want := "ES91 **** **** **** 0005 1332"; got.RedactedText != want {
		t.Errorf("RedactedText = %q, want %q", got.RedactedText, want)
	}
	if want := []string{"credit_card", "iban"}; !reflect.DeepEqual(got.DetectedTypes, want) {
		t.Errorf("DetectedTypes = %v, want %v", got.DetectedTypes, want)
	}
	if got.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", got.MatchCount)
	}
	if !got.RequiresLocal {
		t.Error("RequiresLocal = false, want true")
	}
}

func TestDetectNeverLeaksOriginals(t *testing.T) {
	sensitive := []string{
		"12345678Z",
		"X1234567L",
		"4532 1234 5678 9010",
		"ES9121000418450200051332",
		"juan.perez@empresa.es",
		"+34 612 345 678",
	}
	text := "Datos: " + strings.Join(sensitive, " ")

	got := Detect(text)

	for _, value := range sensitive {
		if strings.Contains(got.RedactedText, value) {
			t.Errorf("redacted text still contains %q", value)
		}
	}
}

func TestMatches(t *testing.T) {
	got := Matches("12345678Z y X1234567L")

	want := []core.DetectionMatch{
		{Type: "dni", MaskedValue: "*****8Z"},
		{Type: "nie", MaskedValue: "*****7L"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Matches = %v, want %v", got, want)
	}
}

func TestFailClosedResult(t *testing.T) {
	got := failClosedResult()

	if got.RedactedText != "" {
		t.Errorf("RedactedText = %q, want empty", got.RedactedText)
	}
	if got.Level != core.LevelTopSecret {
		t.Errorf("Level = %s, want %s", got.Level, core.LevelTopSecret)
	}
	if !got.RequiresLocal {
		t.Error("RequiresLocal = false, want true")
	}
}
