package notion

import (
	"strings"
	"time"
)

// Page is the subset of a Notion page object the adapter reads.
type Page struct {
	ID          string              `json:"id"`
	CreatedTime time.Time           `json:"created_time"`
	Icon        *Icon               `json:"icon"`
	Properties  map[string]Property `json:"properties"`
}

// Icon is a page icon. Only emoji icons carry a marker.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// Property is a page property value of any supported type.
type Property struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Relation []Ref      `json:"relation,omitempty"`
	HasMore  bool       `json:"has_more,omitempty"`
	Rollup   *Rollup    `json:"rollup,omitempty"`
	Formula  *Formula   `json:"formula,omitempty"`
}

// RichText is one text run.
type RichText struct {
	PlainText string `json:"plain_text"`
	Text      *Text  `json:"text,omitempty"`
}

// Text is the content of a text run.
type Text struct {
	Content string `json:"content"`
}

// Ref references another page.
type Ref struct {
	ID string `json:"id"`
}

// Rollup is a rollup property value.
type Rollup struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number,omitempty"`
}

// Formula is a formula property value.
type Formula struct {
	Type   string   `json:"type"`
	Number *float64 `json:"number,omitempty"`
}

type queryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type pageList struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

type propertyItem struct {
	Type     string `json:"type"`
	Relation *Ref   `json:"relation,omitempty"`
}

type propertyItemList struct {
	Results    []propertyItem `json:"results"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor"`
}

// EmojiIcon returns the emoji of the page icon, or "" for other icon types.
func (p Page) EmojiIcon() string {
	if p.Icon == nil || p.Icon.Type != "emoji" {
		return ""
	}
	return p.Icon.Emoji
}

// TitleProperty returns the property named name if it exists and is a title.
// Other title properties of the page are never consulted.
func (p Page) TitleProperty(name string) (Property, bool) {
	prop, ok := p.Properties[name]
	if !ok || prop.Type != "title" {
		return Property{}, false
	}
	return prop, true
}

// PlainText concatenates the text runs of a title or rich text property.
func (p Property) PlainText() string {
	runs := p.Title
	if p.Type == "rich_text" {
		runs = p.RichText
	}
	var b strings.Builder
	for _, r := range runs {
		switch {
		case r.PlainText != "":
			b.WriteString(r.PlainText)
		case r.Text != nil:
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

// NumberValue returns the numeric value of a number, rollup or formula
// property.
func (p Property) NumberValue() (float64, bool) {
	switch p.Type {
	case "number":
		if p.Number != nil {
			return *p.Number, true
		}
	case "rollup":
		if p.Rollup != nil && p.Rollup.Number != nil {
			return *p.Rollup.Number, true
		}
	case "formula":
		if p.Formula != nil && p.Formula.Number != nil {
			return *p.Formula.Number, true
		}
	}
	return 0, false
}

func titleValue(content string) map[string]any {
	return map[string]any{"title": []map[string]any{{"text": map[string]string{"content": content}}}}
}

func relationValue(ids []string) map[string]any {
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Ref{ID: id})
	}
	return map[string]any{"relation": refs}
}
