package utils

import "testing"

func TestExtractJSONWithSurroundingText(t *testing.T) {
	content := "说明文字 {\"risk_level\":\"high\",\"reason\":{\"a\":1}} 结尾"
	extracted := ExtractJSON(content)
	if extracted != `{"risk_level":"high","reason":{"a":1}}` {
		t.Fatalf("unexpected extraction: %s", extracted)
	}
}

func TestExtractJSONWithoutObject(t *testing.T) {
	content := "没有任何 JSON"
	if got := ExtractJSON(content); got != content {
		t.Fatalf("expected original content, got %s", got)
	}
}

func TestToJSON(t *testing.T) {
	got := ToJSON(map[string]string{"governance_id": "GOV-1a2b3c4d"})
	if got != `{"governance_id":"GOV-1a2b3c4d"}` {
		t.Fatalf("unexpected json: %s", got)
	}
}
