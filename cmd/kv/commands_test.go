package kv

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteValues(t *testing.T) {
	values := map[string]json.RawMessage{
		"b": json.RawMessage(`{"list":[1,2]}`),
		"a": json.RawMessage(`"text"`),
	}

	var out bytes.Buffer
	if err := writeValues(&out, values, "yaml"); err != nil {
		t.Fatalf("yaml output failed: %v", err)
	}
	for _, want := range []string{"a: text\n", "b:\n", "list:\n", "- 1\n", "- 2\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in yaml output:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := writeValues(&out, values, "json"); err != nil {
		t.Fatalf("json output failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil || len(decoded) != 2 {
		t.Errorf("Unexpected json output %s", out.String())
	}

	if err := writeValues(&out, values, "xml"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}
