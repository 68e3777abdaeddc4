package editor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aisa-it/inkwell/internal/inkwell/document"
)

var (
	ErrNoCommand = errors.New("no command selected")
	ErrNoPrompt  = errors.New("command needs an url but palette has no prompt")
)

// Command - команда slash-палитры. Команды с NeedsURL синхронно запрашивают
// внешний URL через промпт палитры до вставки.
type Command struct {
	Title    string
	NeedsURL bool
	Build    func(url string) (document.Node, error)
}

// Registry - фиксированный реестр команд палитры.
var Registry = []Command{
	{Title: "Heading 1", Build: buildHeading(1)},
	{Title: "Heading 2", Build: buildHeading(2)},
	{Title: "Heading 3", Build: buildHeading(3)},
	{Title: "Bullet list", Build: func(string) (document.Node, error) {
		return document.NewBulletList(document.NewListItem(document.NewParagraph())), nil
	}},
	{Title: "Ordered list", Build: func(string) (document.Node, error) {
		return document.NewOrderedList(document.NewListItem(document.NewParagraph())), nil
	}},
	{Title: "Table", Build: func(string) (document.Node, error) {
		return document.NewTable(3, 3), nil
	}},
	{Title: "Code block", Build: func(string) (document.Node, error) {
		return document.NewCodeBlock(""), nil
	}},
	{Title: "Callout", Build: func(string) (document.Node, error) {
		return document.NewCallout("info"), nil
	}},
	{Title: "Columns 2", Build: func(string) (document.Node, error) {
		return document.NewColumns(2), nil
	}},
	{Title: "Columns 3", Build: func(string) (document.Node, error) {
		return document.NewColumns(3), nil
	}},
	{Title: "YouTube", NeedsURL: true, Build: func(url string) (document.Node, error) {
		if url == "" {
			return document.Node{}, errors.New("youtube command needs an url")
		}
		return document.NewYoutube(url), nil
	}},
	{Title: "Drive preview", NeedsURL: true, Build: func(url string) (document.Node, error) {
		if url == "" {
			return document.Node{}, errors.New("drive command needs an url")
		}
		return document.NewIframe(RewriteDriveView(url)), nil
	}},
}

func buildHeading(level int) func(string) (document.Node, error) {
	return func(string) (document.Node, error) {
		return document.NewHeading(level), nil
	}
}

// RewriteDriveView переписывает view-ссылку Google Drive в preview-форму:
// суффикс "/view..." заменяется на "/preview". Во view-форме файл не
// встраивается в iframe.
func RewriteDriveView(url string) string {
	if !strings.Contains(url, "drive.google.com") && !strings.Contains(url, "docs.google.com") {
		return url
	}
	if i := strings.Index(url, "/view"); i >= 0 {
		return url[:i] + "/preview"
	}
	return url
}

// Palette - палитра slash-команд. Открывается на блоке, в конце которого
// набран триггер "/query". Escape это Dismiss, Enter это Execute, стрелки -
// MoveSelection.
type Palette struct {
	session  *Session
	path     Path
	registry []Command
	query    string
	filtered []Command
	selected int
	prompt   func(title string) (string, error)
}

// OpenPalette открывает палитру на блоке по пути. promptURL вызывается для
// команд, которым нужен внешний URL; nil допустим, если такие команды не
// будут выполняться.
func (s *Session) OpenPalette(path Path, promptURL func(title string) (string, error)) *Palette {
	p := &Palette{
		session:  s,
		path:     slices.Clone(path),
		registry: Registry,
		prompt:   promptURL,
	}
	p.Filter("")
	return p
}

// Filter сужает список команд по префиксу заголовка без учета регистра и
// сбрасывает выделение на первую команду. Возвращает заголовки в порядке
// реестра.
func (p *Palette) Filter(query string) []string {
	p.query = query
	p.filtered = p.filtered[:0]
	for _, cmd := range p.registry {
		if strings.HasPrefix(strings.ToLower(cmd.Title), strings.ToLower(query)) {
			p.filtered = append(p.filtered, cmd)
		}
	}
	p.selected = 0

	titles := make([]string, len(p.filtered))
	for i, cmd := range p.filtered {
		titles[i] = cmd.Title
	}
	return titles
}

// MoveSelection сдвигает курсор выбора на delta позиций с заворотом на
// краях списка.
func (p *Palette) MoveSelection(delta int) {
	n := len(p.filtered)
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

func (p *Palette) Selected() (Command, bool) {
	if p.selected >= len(p.filtered) {
		return Command{}, false
	}
	return p.filtered[p.selected], true
}

// Execute выполняет выбранную команду: триггер "/query" убирается из конца
// блока, построенная нода встает на его место. Опустевший блок заменяется
// нодой целиком, непустой остается, нода вставляется следом.
func (p *Palette) Execute() error {
	cmd, ok := p.Selected()
	if !ok {
		return ErrNoCommand
	}

	var url string
	if cmd.NeedsURL {
		if p.prompt == nil {
			return ErrNoPrompt
		}
		var err error
		if url, err = p.prompt(cmd.Title); err != nil {
			return fmt.Errorf("url prompt: %w", err)
		}
	}

	node, err := cmd.Build(url)
	if err != nil {
		return err
	}
	return p.session.executeCommand(p.path, "/"+p.query, node)
}

// Dismiss закрывает палитру без вставки.
func (p *Palette) Dismiss() {
	p.filtered = nil
}

func (s *Session) executeCommand(path Path, trigger string, node document.Node) error {
	return s.mutate(func(d *document.Document) error {
		block, err := nodeAt(d, path)
		if err != nil {
			return err
		}
		stripTrigger(block, trigger)
		if len(block.Content) == 0 {
			*block = node
			return nil
		}

		siblings, idx, err := containerAt(d, path, false)
		if err != nil {
			return err
		}
		*siblings = slices.Insert(*siblings, idx+1, node)
		return nil
	})
}

// stripTrigger убирает триггерный текст из конца последнего текстового
// прогона блока. Опустевший прогон удаляется.
func stripTrigger(block *document.Node, trigger string) {
	if len(block.Content) == 0 {
		return
	}
	last := &block.Content[len(block.Content)-1]
	if last.Type != document.TypeText {
		return
	}
	last.Text = strings.TrimSuffix(last.Text, trigger)
	if last.Text == "" {
		block.Content = block.Content[:len(block.Content)-1]
	}
}
