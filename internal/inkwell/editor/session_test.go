package editor

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

func TestNewSessionEmpty(t *testing.T) {
	s, err := NewSession(nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("initial state = %s, want idle", s.State())
	}
	if len(s.Document().Content) != 1 || s.Document().Content[0].Type != document.TypeParagraph {
		t.Errorf("empty session document = %+v", s.Document())
	}
}

func TestNewSessionInvalidDocument(t *testing.T) {
	doc := document.NewDocument(document.NewText("bare text at top level"))
	if _, err := NewSession(doc); err == nil {
		t.Fatal("invalid document must not open a session")
	}
}

func TestInsertAndDelete(t *testing.T) {
	s, err := NewSession(document.NewDocument(document.NewParagraph(document.NewText("a"))))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.InsertAt(Path{1}, document.NewHeading(2, document.NewText("b"))); err != nil {
		t.Fatalf("InsertAt failed: %v", err)
	}
	if s.State() != StateComposing {
		t.Errorf("state after mutation = %s, want composing", s.State())
	}
	if len(s.Document().Content) != 2 || s.Document().Content[1].Type != document.TypeHeading {
		t.Fatalf("document after insert = %+v", s.Document().Content)
	}

	if err := s.Delete(Path{0}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(s.Document().Content) != 1 || s.Document().Content[0].Type != document.TypeHeading {
		t.Fatalf("document after delete = %+v", s.Document().Content)
	}
}

// Отклоненная мутация не меняет дерево: наружу никогда не отдается
// невалидное состояние.
func TestRejectedMutationLeavesTreeUntouched(t *testing.T) {
	doc := document.NewDocument(document.NewParagraph(document.NewText("a")))
	s, err := NewSession(doc)
	if err != nil {
		t.Fatal(err)
	}
	before := s.Document().Clone()

	// голый текст в блочном контексте невалиден
	if err := s.InsertAt(Path{1}, document.NewText("loose")); err == nil {
		t.Fatal("schema-invalid insert must be rejected")
	}
	var violation *document.SchemaViolation
	if err := s.InsertAt(Path{1}, document.NewText("loose")); !errors.As(err, &violation) {
		t.Errorf("rejection error = %v, want SchemaViolation", err)
	}

	if !reflect.DeepEqual(before, s.Document()) {
		t.Errorf("tree changed after rejected mutation:\nbefore %+v\nafter  %+v", before, s.Document())
	}
	if s.State() != StateIdle {
		t.Errorf("state after rejected mutation = %s, want idle", s.State())
	}
}

func TestInsertBadPath(t *testing.T) {
	s, _ := NewSession(nil)
	if err := s.InsertAt(Path{5}, document.NewParagraph()); !errors.Is(err, ErrBadPath) {
		t.Errorf("insert at out-of-range path = %v, want ErrBadPath", err)
	}
	if err := s.Delete(Path{}); !errors.Is(err, ErrBadPath) {
		t.Errorf("delete at empty path = %v, want ErrBadPath", err)
	}
}

func TestSaveInvokesHook(t *testing.T) {
	var saved []byte
	s, err := NewSession(
		document.NewDocument(document.NewParagraph(document.NewText("hi"))),
		WithSaveHook(func(content []byte) error {
			saved = content
			return nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	data, err := s.Save()
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if string(saved) != string(data) {
		t.Errorf("hook content differs from returned content")
	}
	if s.State() != StateSaved {
		t.Errorf("state after save = %s, want saved", s.State())
	}

	parsed, err := document.ParseBytes(data)
	if err != nil {
		t.Fatalf("saved content does not parse: %v", err)
	}
	if !reflect.DeepEqual(parsed, s.Document()) {
		t.Errorf("saved content round-trip mismatch")
	}
}

func TestResizeGesture(t *testing.T) {
	doc := document.NewDocument(document.NewImage("/api/file/abc"))
	s, err := NewSession(doc)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.StartResize(Path{0}, 100, 300); err != nil {
		t.Fatalf("StartResize failed: %v", err)
	}

	live, err := s.MoveResize(140)
	if err != nil {
		t.Fatalf("MoveResize failed: %v", err)
	}
	if live != 340 {
		t.Errorf("live width = %d, want 340", live)
	}
	// живая ширина не записывается в дерево
	if got := s.Document().Content[0].AttrString("width"); got != "100%" {
		t.Errorf("width during gesture = %q, want untouched 100%%", got)
	}

	if _, err := s.MoveResize(60); err != nil {
		t.Fatal(err)
	}
	if err := s.EndResize(); err != nil {
		t.Fatalf("EndResize failed: %v", err)
	}
	// 300 + (60 - 100)
	if got := s.Document().Content[0].AttrInt("width"); got != 260 {
		t.Errorf("committed width = %d, want 260", got)
	}

	if _, err := s.MoveResize(10); !errors.Is(err, ErrNoResize) {
		t.Errorf("move after end = %v, want ErrNoResize", err)
	}
}

func TestResizeNonImage(t *testing.T) {
	s, _ := NewSession(document.NewDocument(document.NewParagraph()))
	if err := s.StartResize(Path{0}, 0, 0); err == nil {
		t.Fatal("resize of non-image must fail")
	}
}

func TestCancelResize(t *testing.T) {
	s, _ := NewSession(document.NewDocument(document.NewImage("/api/file/abc")))
	if err := s.StartResize(Path{0}, 0, 100); err != nil {
		t.Fatal(err)
	}
	s.CancelResize()
	if err := s.EndResize(); !errors.Is(err, ErrNoResize) {
		t.Errorf("end after cancel = %v, want ErrNoResize", err)
	}
	if got := s.Document().Content[0].AttrString("width"); got != "100%" {
		t.Errorf("width after cancel = %q, want untouched", got)
	}
}

func TestCycleCalloutType(t *testing.T) {
	s, err := NewSession(document.NewDocument(document.NewCallout("info", document.NewText("x"))))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"warning", "error", "success", "info"}
	for _, typ := range want {
		if err := s.CycleCalloutType(Path{0}); err != nil {
			t.Fatalf("CycleCalloutType failed: %v", err)
		}
		if got := s.Document().Content[0].AttrString("type"); got != typ {
			t.Fatalf("callout type = %q, want %q", got, typ)
		}
	}

	if err := s.CycleCalloutType(Path{0, 0}); err == nil {
		t.Error("cycling a non-callout must fail")
	}
}

func TestColumns(t *testing.T) {
	s, err := NewSession(document.NewDocument(document.NewParagraph(document.NewText("a"))))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.InsertColumns(Path{1}, 4); err == nil {
		t.Error("4 columns must be rejected")
	}
	if err := s.InsertColumns(Path{1}, 2); err != nil {
		t.Fatalf("InsertColumns failed: %v", err)
	}

	container := s.Document().Content[1]
	if container.Type != document.TypeColumnsContainer || len(container.Content) != 2 {
		t.Fatalf("container = %+v", container)
	}
	if container.Content[0].AttrString("width") != "50%" {
		t.Errorf("column width = %q", container.Content[0].AttrString("width"))
	}

	if err := s.DeleteColumns(Path{0}); err == nil {
		t.Error("DeleteColumns on paragraph must fail")
	}
	if err := s.DeleteColumns(Path{1}); err != nil {
		t.Fatalf("DeleteColumns failed: %v", err)
	}
	if len(s.Document().Content) != 1 {
		t.Errorf("container children must go with it: %+v", s.Document().Content)
	}
}

func TestHandleTabSinksListItem(t *testing.T) {
	list := document.NewBulletList(
		document.NewListItem(document.NewParagraph(document.NewText("one"))),
		document.NewListItem(document.NewParagraph(document.NewText("two"))),
	)
	s, err := NewSession(document.NewDocument(list))
	if err != nil {
		t.Fatal(err)
	}

	// путь на параграф внутри второго элемента: списочный контекст
	// определяется по ближайшему предку-listItem
	if err := s.HandleTab(Path{0, 1, 0}); err != nil {
		t.Fatalf("HandleTab failed: %v", err)
	}

	got := s.Document().Content[0]
	if len(got.Content) != 2 {
		t.Fatalf("list items = %d, want 2", len(got.Content))
	}
	nested := got.Content[1].Content[0]
	if nested.Type != document.TypeBulletList || len(nested.Content) != 1 {
		t.Fatalf("second item block = %+v, want nested bulletList", nested)
	}
	if text := nested.Content[0].TextContent(); text != "two" {
		t.Errorf("sunk item text = %q, want two", text)
	}

	// повторный Tab на первом элементе вложенного списка снова оборачивает
	if err := s.HandleTab(Path{0, 1, 0, 0}); err != nil {
		t.Fatalf("second HandleTab failed: %v", err)
	}
}

func TestHandleTabMergesIntoPreviousNestedList(t *testing.T) {
	list := document.NewBulletList(
		document.NewListItem(document.NewBulletList(
			document.NewListItem(document.NewParagraph(document.NewText("nested"))),
		)),
		document.NewListItem(document.NewParagraph(document.NewText("two"))),
	)
	s, err := NewSession(document.NewDocument(list))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.HandleTab(Path{0, 1}); err != nil {
		t.Fatalf("HandleTab failed: %v", err)
	}

	got := s.Document().Content[0]
	if len(got.Content) != 1 {
		t.Fatalf("list items = %d, want 1", len(got.Content))
	}
	nested := got.Content[0].Content[0]
	if len(nested.Content) != 2 {
		t.Fatalf("nested items = %d, want 2", len(nested.Content))
	}
	if text := nested.Content[1].TextContent(); text != "two" {
		t.Errorf("merged item text = %q, want two", text)
	}
}

func TestHandleTabOutsideList(t *testing.T) {
	s, err := NewSession(document.NewDocument(document.NewParagraph(document.NewText("x"))))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.HandleTab(Path{0}); err != nil {
		t.Fatalf("HandleTab failed: %v", err)
	}

	p := s.Document().Content[0]
	if len(p.Content) != 2 || p.Content[0].Text != "    " {
		t.Errorf("paragraph after tab = %+v, want leading 4-space run", p.Content)
	}
}
