package traingen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// fakeOllama responds to /api/chat with canned replies in order.
func fakeOllama(t *testing.T, replies []string) *httptest.Server {
	t.Helper()
	i := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}

		reply := replies[min(i, len(replies)-1)]
		i++
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Role: "assistant", Content: reply}})
	}))
}

func TestGenerateSentences(t *testing.T) {
	server := fakeOllama(t, []string{
		"I felt great today. The rain would not stop!",
		"Something about the evening made me hopeful. I missed her terribly. Work dragged on forever.",
	})
	defer server.Close()

	c := NewClient(server.URL, "")
	var got []string
	err := c.GenerateSentences(context.Background(), 4, func(batch []string) error {
		got = append(got, batch...)
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateSentences: %v", err)
	}

	want := []string{
		"I felt great today.",
		"The rain would not stop!",
		"Something about the evening made me hopeful.",
		"I missed her terribly.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sentences = %q, want %q", got, want)
	}
}

func TestGenerateSentencesRetriesEmptyReply(t *testing.T) {
	server := fakeOllama(t, []string{"", "One sentence here."})
	defer server.Close()

	c := NewClient(server.URL, "")
	var got []string
	err := c.GenerateSentences(context.Background(), 1, func(batch []string) error {
		got = append(got, batch...)
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateSentences: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d sentences, want 1", len(got))
	}
}

func TestLabelSentence(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantD       float64
		wantE       float64
		wantErr     bool
	}{
		{"plain labels", "0.62,0.41", 0.62, 0.41, false},
		{"labels with spaces", "0.80, 0.95", 0.80, 0.95, false},
		{"negative clamped", "-0.20,0.30", 0, 0.30, false},
		{"both negative clamped", "-1,-0.5", 0, 0, false},
		{"chatty reply rejected", "I think 0.5 and 0.6", 0, 0, true},
		{"wrong arity rejected", "0.5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fakeOllama(t, []string{tt.reply})
			defer server.Close()

			c := NewClient(server.URL, "")
			d, e, err := c.LabelSentence(context.Background(), "I danced all night")
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for reply %q", tt.reply)
				}
				return
			}
			if err != nil {
				t.Fatalf("LabelSentence: %v", err)
			}
			if d != tt.wantD || e != tt.wantE {
				t.Errorf("labels = %v, %v, want %v, %v", d, e, tt.wantD, tt.wantE)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? trailing fragment")
	want := []string{"First one.", "Second one!", "Third one?", "trailing fragment"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitSentences = %q, want %q", got, want)
	}

	if got := splitSentences("   "); got != nil {
		t.Errorf("splitSentences(blank) = %q, want nil", got)
	}
}
