package message

import (
	"encoding/json"
	"testing"
)

func TestFallbackText(t *testing.T) {
	blocks := []Block{
		Header("CI"),
		Section("summary"),
		Divider(),
		Context("a", "b"),
	}

	got := FallbackText(blocks)
	want := "CI\nsummary\n\na b"
	if got != want {
		t.Fatalf("FallbackText = %q, want %q", got, want)
	}
}

func TestBlockJSON(t *testing.T) {
	data, err := json.Marshal([]Block{Header("CI"), Divider()})
	if err != nil {
		t.Fatal(err)
	}

	want := `[{"type":"header","text":{"type":"plain_text","text":"CI","emoji":true}},{"type":"divider"}]`
	if string(data) != want {
		t.Fatalf("json = %s, want %s", data, want)
	}
}
