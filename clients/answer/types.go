package answer

import (
	"bytes"
	"encoding/json"
)

// Request is the body sent to the answer service.
type Request struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// Response is the answer service reply to POST /ask.
type Response struct {
	Answer  string   `json:"answer"`
	Context []Source `json:"context"`
}

// Source is one candidate citation returned alongside an answer.
// Only URL is interpreted; every other field is kept verbatim in Extra.
type Source struct {
	URL   string
	Text  string
	Extra map[string]json.RawMessage
}

// UnmarshalJSON accepts any JSON value. Non-object entries and non-string
// "source" values decode to an empty URL.
func (s *Source) UnmarshalJSON(data []byte) error {
	*s = Source{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}

	s.URL, _ = stringField(fields["source"])
	delete(fields, "source")
	// a non-string text stays in Extra untouched
	if text, ok := stringField(fields["text"]); ok {
		s.Text = text
		delete(fields, "text")
	}
	if len(fields) > 0 {
		s.Extra = fields
	}
	return nil
}

// MarshalJSON writes the source back with its auxiliary fields.
func (s Source) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+2)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["source"] = s.URL
	if _, raw := s.Extra["text"]; !raw && s.Text != "" {
		out["text"] = s.Text
	}
	return json.Marshal(out)
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// SearchRequest is the body sent to POST /search.
type SearchRequest = Request

// SearchResponse is the raw retrieval result from POST /search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// SearchResult is one retrieved document chunk.
type SearchResult struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// SourceURL returns the "source" metadata entry, or "".
func (r SearchResult) SourceURL() string {
	if v, ok := r.Metadata["source"].(string); ok {
		return v
	}
	return ""
}
