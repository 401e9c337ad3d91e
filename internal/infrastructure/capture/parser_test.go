package capture

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

func titleParser() *Parser {
	return NewParser(domain.ParserSettings{Strategy: StrategyTitles})
}

func TestParseValidV3Format(t *testing.T) {
	data := "{\"version\":3,\"term\":{\"cols\":80,\"rows\":24},\"timestamp\":1234567890}\n" +
		"[0.5,\"i\",\"\\r\"]\n" +
		"[1.0,\"o\",\"\\u001b]2;mkdir test_dir\\u0007\"]\n" +
		"[1.5,\"i\",\"\\r\"]\n" +
		"[2.0,\"o\",\"\\u001b]2;ls -la\\u0007\"]\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}

	want := []domain.ReconstructedCommand{
		{Text: "mkdir test_dir", Timestamp: 0.0, Sequence: 0},
		{Text: "ls -la", Timestamp: 1.0, Sequence: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValidV2Format(t *testing.T) {
	data := "{\"version\":2,\"width\":80,\"height\":24}\n" +
		"[0.5,\"i\",\"\\r\"]\n" +
		"[1.0,\"o\",\"\\u001b]2;echo hello\\u0007\"]\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "echo hello" || got[0].Timestamp != 0.0 {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestParseEmptyFile(t *testing.T) {
	_, err := titleParser().ParseEvents(nil)
	if err == nil || !strings.Contains(err.Error(), "empty .cast file") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte{0xff, 0xfe, 0xfd})
	if err == nil || !strings.Contains(err.Error(), "invalid UTF-8 encoding") {
		t.Fatalf("expected UTF-8 error, got %v", err)
	}
}

func TestParseInvalidJSONHeader(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte("{\"version\":3,invalid\n[0.0,\"o\",\"test\"]"))
	if err == nil || !strings.Contains(err.Error(), "invalid JSON header") {
		t.Fatalf("expected header error, got %v", err)
	}
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 1 {
		t.Fatalf("expected line 1 parse error, got %v", err)
	}
}

func TestParseHeaderTrailingDataRejected(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte("{\"version\":2} garbage\n[0.0,\"o\",\"test\"]"))
	if err == nil || !strings.Contains(err.Error(), "invalid JSON header") {
		t.Fatalf("expected header error, got %v", err)
	}
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 1 {
		t.Fatalf("expected line 1 parse error, got %v", err)
	}
}

func TestParseHeaderNotObject(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte("[\"version\",3]\n[0.0,\"o\",\"test\"]"))
	if err == nil || !strings.Contains(err.Error(), "header must be a JSON object") {
		t.Fatalf("expected header-object error, got %v", err)
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte("{\"version\":1}\n[0.0,\"o\",\"test\"]"))
	if err == nil || !strings.Contains(err.Error(), "unsupported asciinema format version: 1") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestParseMissingVersion(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte("{\"width\":80,\"height\":24}\n[0.0,\"o\",\"test\"]"))
	if err == nil || !strings.Contains(err.Error(), "unsupported asciinema format version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestParseFloatVersionRejected(t *testing.T) {
	_, err := titleParser().ParseEvents([]byte("{\"version\":2.0}\n[0.0,\"o\",\"test\"]"))
	if err == nil || !strings.Contains(err.Error(), "unsupported asciinema format version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestParseNoCommands(t *testing.T) {
	data := "{\"version\":3}\n[0.0,\"o\",\"regular output\"]\n[1.0,\"i\",\"input\"]"
	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no commands, got %+v", got)
	}
}

func TestParseFiltersPromptTitles(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[0.0,\"i\",\"\\r\"]\n" +
		"[0.5,\"o\",\"\\u001b]2;cd\\u0007\"]\n" +
		"[1.0,\"i\",\"\\r\"]\n" +
		"[1.5,\"o\",\"\\u001b]2;mkdir test\\u0007\"]\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "mkdir test" {
		t.Fatalf("expected only mkdir test, got %+v", got)
	}
}

func TestParseMaintainsFileOrder(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[2.0,\"i\",\"\\r\"]\n" +
		"[2.5,\"o\",\"\\u001b]2;ls\\u0007\"]\n" +
		"[0.5,\"i\",\"\\r\"]\n" +
		"[1.0,\"o\",\"\\u001b]2;pwd\\u0007\"]\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	want := []domain.ReconstructedCommand{
		{Text: "ls", Timestamp: 1.5, Sequence: 0},
		{Text: "pwd", Timestamp: 0.0, Sequence: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[0.0,\"i\",\"\\r\"]\n" +
		"\n" +
		"[1.0,\"o\",\"\\u001b]2;echo test\\u0007\"]\n" +
		"\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "echo test" {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestParseEnterTimestampPreferred(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[0.0,\"i\",\"m\"]\n" +
		"[0.1,\"i\",\"k\"]\n" +
		"[0.2,\"i\",\"d\"]\n" +
		"[0.3,\"i\",\"i\"]\n" +
		"[0.4,\"i\",\"r\"]\n" +
		"[0.5,\"i\",\"\\r\"]\n" +
		"[1.0,\"o\",\"\\u001b]2;mkdir\\u0007\"]"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp != 0.5 {
		t.Fatalf("expected Enter timestamp 0.5, got %+v", got)
	}
}

func TestParseIntegerTimestamps(t *testing.T) {
	data := "{\"version\":3}\n[1,\"i\",\"\\r\"]\n[2,\"o\",\"\\u001b]2;ls\\u0007\"]"
	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp != 0 {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestParseMaxEventsLimit(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[0.0,\"i\",\"\\r\"]\n" +
		"[1.0,\"o\",\"\\u001b]2;cmd1\\u0007\"]\n" +
		"[2.0,\"i\",\"\\r\"]\n" +
		"[3.0,\"o\",\"\\u001b]2;cmd2\\u0007\"]\n" +
		"[4.0,\"i\",\"\\r\"]\n" +
		"[5.0,\"o\",\"\\u001b]2;cmd3\\u0007\"]"

	parser := NewParser(domain.ParserSettings{Strategy: StrategyTitles, MaxEvents: 2})
	_, err := parser.ParseEvents([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "event count exceeds maximum allowed limit") {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestParseCommandWithoutEnterUsesTitleTimestamp(t *testing.T) {
	data := "{\"version\":3}\n[1.0,\"o\",\"\\u001b]2;ls\\u0007\"]"
	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "ls" || got[0].Timestamp != 0.0 {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestParseNormalizesTimestampsToBase(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[10.0,\"i\",\"\\r\"]\n" +
		"[11.0,\"o\",\"\\u001b]2;pwd\\u0007\"]\n" +
		"[20.0,\"i\",\"\\r\"]\n" +
		"[21.0,\"o\",\"\\u001b]2;ls\\u0007\"]"

	got, err := titleParser().ParseEvents([]byte(data))
	if err != nil {
		t.Fatalf("ParseEvents error: %v", err)
	}
	if len(got) != 2 || got[0].Timestamp != 0.0 || got[1].Timestamp != 10.0 {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestParseExitEventData(t *testing.T) {
	for _, line := range []string{
		"[1.0,\"x\"]",
		"[1.0,\"x\",0]",
		"[1.0,\"x\",\"0\"]",
	} {
		data := "{\"version\":3}\n" + line
		if _, err := titleParser().ParseEvents([]byte(data)); err != nil {
			t.Fatalf("exit event %q: unexpected error %v", line, err)
		}
	}
}

func TestParseInvalidEventKind(t *testing.T) {
	data := "{\"version\":3}\n[1.0,\"z\",\"boom\"]"
	_, err := titleParser().ParseEvents([]byte(data))
	var parseErr *domain.ParseError
	if err == nil || !errors.As(err, &parseErr) || parseErr.Line != 2 {
		t.Fatalf("expected line 2 parse error, got %v", err)
	}
}

func TestParseMalformedEventLineIsAtomic(t *testing.T) {
	data := "{\"version\":3}\n" +
		"[0.0,\"i\",\"\\r\"]\n" +
		"[1.0,\"o\",\"\\u001b]2;ls\\u0007\"]\n" +
		"not json\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if got != nil {
		t.Fatalf("expected no partial results, got %+v", got)
	}
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 4 {
		t.Fatalf("expected line 4 parse error, got %v", err)
	}
}

func TestParseEventTrailingDataRejected(t *testing.T) {
	data := "{\"version\":2}\n" +
		"[0.5,\"i\",\"\\r\"] junk\n" +
		"[1.0,\"o\",\"\\u001b]2;ls\\u0007\"]\n"

	got, err := titleParser().ParseEvents([]byte(data))
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("expected event error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial results, got %+v", got)
	}
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 2 {
		t.Fatalf("expected line 2 parse error, got %v", err)
	}
}
