package document

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const sampleJSON = `{
	"type": "doc",
	"content": [
		{
			"type": "paragraph",
			"content": [
				{"type": "text", "marks": [{"type": "bold"}], "text": "Hello"},
				{"type": "text", "text": " world"}
			]
		},
		{
			"type": "heading",
			"attrs": {"level": 2},
			"content": [{"type": "text", "text": "Title"}]
		},
		{
			"type": "image",
			"attrs": {"src": "/api/file/abc", "alt": "", "width": "100%", "textAlign": "left"}
		},
		{
			"type": "table",
			"content": [
				{
					"type": "tableRow",
					"content": [
						{
							"type": "tableHeader",
							"attrs": {"colspan": 2, "rowspan": 1, "colwidth": [120, 80]},
							"content": [{"type": "paragraph", "content": [{"type": "text", "text": "h"}]}]
						}
					]
				}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Content) != 4 {
		t.Fatalf("Content count = %d, want 4", len(doc.Content))
	}

	if doc.Content[1].AttrInt("level") != 2 {
		t.Errorf("heading level = %d, want 2", doc.Content[1].AttrInt("level"))
	}

	if doc.Content[2].AttrString("src") != "/api/file/abc" {
		t.Errorf("image src = %q", doc.Content[2].AttrString("src"))
	}
}

func TestParseNotDocument(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"type":"paragraph"}`))
	if err != ErrNotDocument {
		t.Errorf("err = %v, want ErrNotDocument", err)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse(strings.NewReader(`{broken`)); err == nil {
		t.Error("expected error on malformed JSON")
	}
}

// Сериализация и повторный парсинг воспроизводят идентичное дерево,
// включая неизвестные типы нод и порядок marks.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{name: "full sample", json: sampleJSON},
		{
			name: "unknown node type survives",
			json: `{"type":"doc","content":[{"type":"unknown-future-type","attrs":{"x":"y"},"content":[{"type":"text","text":"inner"}]}]}`,
		},
		{
			name: "mark order preserved",
			json: `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","marks":[{"type":"italic"},{"type":"bold"},{"type":"link","attrs":{"href":"https://example.com"}}],"text":"x"}]}]}`,
		},
		{
			name: "atomic nodes",
			json: `{"type":"doc","content":[{"type":"attachment","attrs":{"src":"/api/file/a","fileName":"a.pdf","fileSize":"1.5 KB","type":"pdf"}},{"type":"youtube","attrs":{"src":"https://youtu.be/dQw4w9WgXcQ"}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseBytes([]byte(tt.json))
			if err != nil {
				t.Fatalf("ParseBytes failed: %v", err)
			}

			data, err := Serialize(doc)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}

			again, err := ParseBytes(data)
			if err != nil {
				t.Fatalf("second ParseBytes failed: %v", err)
			}

			if !reflect.DeepEqual(doc, again) {
				t.Errorf("round trip mismatch:\nfirst:  %+v\nsecond: %+v", doc, again)
			}
		})
	}
}

// Нода, построенная конструкторами, после сериализации и парсинга
// структурно равна исходной (числа хранятся как float64).
func TestBuildersRoundTrip(t *testing.T) {
	doc := NewDocument(
		NewHeading(3, NewText("head")),
		NewParagraph(NewText("bold", Mark{Type: MarkBold})),
		NewTable(2, 2),
		NewColumns(3),
		NewImage("/api/file/xyz"),
	)

	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	parsed, err := ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes failed: %v", err)
	}

	if !reflect.DeepEqual(doc, parsed) {
		t.Errorf("built tree differs from parsed tree:\nbuilt:  %+v\nparsed: %+v", doc, parsed)
	}
}

func TestWalk(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var types []string
	doc.Walk(func(n *Node) bool {
		types = append(types, n.Type)
		return false
	})

	want := []string{
		"paragraph", "text", "text",
		"heading", "text",
		"image",
		"table", "tableRow", "tableHeader", "paragraph", "text",
	}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("walk order = %v, want %v", types, want)
	}
}

func TestWalkStopDescend(t *testing.T) {
	doc, _ := Parse(strings.NewReader(sampleJSON))

	var count int
	doc.Walk(func(n *Node) bool {
		count++
		return true // не спускаться в детей
	})

	if count != 4 {
		t.Errorf("visited %d nodes, want 4 top-level only", count)
	}
}

func TestAttrAccessors(t *testing.T) {
	var node Node
	if err := json.Unmarshal([]byte(`{"type":"image","attrs":{"src":"u","width":640,"hidden":true}}`), &node); err != nil {
		t.Fatal(err)
	}

	if got := node.AttrString("src"); got != "u" {
		t.Errorf("AttrString = %q, want u", got)
	}
	if got := node.AttrInt("width"); got != 640 {
		t.Errorf("AttrInt = %d, want 640", got)
	}
	if !node.AttrBool("hidden") {
		t.Error("AttrBool = false, want true")
	}
	if got := node.AttrString("missing"); got != "" {
		t.Errorf("missing attr = %q, want empty", got)
	}
	if got := node.AttrInt("src"); got != 0 {
		t.Errorf("wrong-typed attr = %d, want 0", got)
	}
}

func TestTextContent(t *testing.T) {
	node := Node{Type: TypeCodeBlock, Content: []Node{
		{Type: TypeText, Text: "line one\n"},
		{Type: TypeText, Text: "line two"},
	}}
	if got := node.TextContent(); got != "line one\nline two" {
		t.Errorf("TextContent = %q", got)
	}
}
