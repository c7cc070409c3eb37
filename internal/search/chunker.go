package search

import "strings"

// PageText is one page of extracted document text.
type PageText struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// Passage is a chunk candidate before embedding. Index is the document-wide
// ordinal used for deterministic tie-breaks at query time.
type Passage struct {
	Content    string
	PageNumber int
	Index      int
}

// SplitPages cuts page text into overlapping rune windows. Overlap preserves
// context across chunk boundaries; chunks never span pages so page
// attribution stays exact.
func SplitPages(pages []PageText, size, overlap int) []Passage {
	if size <= 0 {
		size = 512
	}
	if overlap >= size {
		overlap = size / 2
	}
	if overlap < 0 {
		overlap = 0
	}

	var passages []Passage
	ordinal := 0
	for _, page := range pages {
		runes := []rune(page.Text)
		for start := 0; start < len(runes); {
			end := start + size
			if end > len(runes) {
				end = len(runes)
			}
			content := strings.TrimSpace(string(runes[start:end]))
			if content != "" {
				passages = append(passages, Passage{
					Content:    content,
					PageNumber: page.PageNumber,
					Index:      ordinal,
				})
				ordinal++
			}
			start += size - overlap
			if start >= len(runes) {
				break
			}
		}
	}
	return passages
}
