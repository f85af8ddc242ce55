package quality

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "fenced json",
			text: "here you go:\n```json\n{\"score\": 3}\n```\n",
			want: `{"score": 3}`,
			ok:   true,
		},
		{
			name: "fence missing a backtick",
			text: "``json\n{\"score\": 3}\n```",
			want: `{"score": 3}`,
			ok:   true,
		},
		{
			name: "bare braces without fence",
			text: "The assessment is {\"score\": -2} as requested.",
			want: `{"score": -2}`,
			ok:   true,
		},
		{
			name: "nested braces grab the outermost pair",
			text: "{\"a\": {\"b\": 1}} trailing",
			want: `{"a": {"b": 1}}`,
			ok:   true,
		},
		{
			name: "no payload at all",
			text: "I cannot answer that.",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONBlock(tt.text)
			if ok != tt.ok {
				t.Fatalf("ok = %t, want %t", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON_RepairsDamagedPayload(t *testing.T) {
	var payload struct {
		Insight string `json:"insight"`
		Scores  []int  `json:"scores"`
	}

	// Trailing comma, a strict decoder rejects this.
	raw := `{"insight": "fine", "scores": [1, 0, 1, -1, 1],}`
	if err := decodeJSON(raw, &payload); err != nil {
		t.Fatalf("repairable payload rejected: %v", err)
	}
	if payload.Insight != "fine" || len(payload.Scores) != 5 {
		t.Errorf("decoded payload incomplete: %+v", payload)
	}

	// Single quotes are another common damage mode.
	var second struct {
		Score int `json:"score"`
	}
	if err := decodeJSON(`{'score': 4}`, &second); err != nil {
		t.Fatalf("single-quoted payload rejected: %v", err)
	}
	if second.Score != 4 {
		t.Errorf("score = %d, want 4", second.Score)
	}
}

func TestDecodeJSON_UnrepairableFails(t *testing.T) {
	var v map[string]any
	if err := decodeJSON("not json at all, sorry", &v); err == nil {
		t.Fatal("expected error for unrepairable payload")
	}
}

func TestExtractImprovedCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "standard fence",
			text: "```improved_code\ndef add(a, b):\n    return a + b\n```",
			want: "def add(a, b):\n    return a + b",
			ok:   true,
		},
		{
			name: "fence after report",
			text: "```json\n{\"improvement_points\": []}\n```\n\n```improved_code\nx = 1\n```\n",
			want: "x = 1",
			ok:   true,
		},
		{
			name: "missing fence",
			text: "Here is the improved code:\n\ndef add(a, b):\n    return a + b\n",
			ok:   false,
		},
		{
			name: "empty fence",
			text: "```improved_code\n\n```",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractImprovedCode(tt.text)
			if ok != tt.ok {
				t.Fatalf("ok = %t, want %t", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
