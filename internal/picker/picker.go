package picker

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/winnow/internal/search"
)

// ErrAborted is returned when the user dismisses the picker without
// selecting anything.
var ErrAborted = errors.New("picker: aborted")

// LineFunc renders one result as its display text plus the rune indices
// to highlight. Empty-query rows have no winning key and no positions.
type LineFunc func(r search.Result) (string, []int)

// Options configures a Picker.
type Options struct {
	// Screen is the terminal to draw on. Nil means a real tcell screen;
	// tests pass a SimulationScreen.
	Screen tcell.Screen

	// Stream ranks items per keystroke. Required.
	Stream *search.StreamSearcher

	// Items is the initial collection.
	Items []any

	// Line renders a result row. Nil means a default that shows string
	// items directly and other items via fmt.
	Line LineFunc

	// Prompt precedes the query. Defaults to "> ".
	Prompt string

	// Reload re-reads the item collection; called on Reloads
	// notifications. Optional.
	Reload func() ([]any, error)

	// Reloads notifies that the backing source changed. Optional.
	Reloads <-chan struct{}
}

// Picker is the interactive filtering UI.
type Picker struct {
	screen  tcell.Screen
	stream  *search.StreamSearcher
	line    LineFunc
	prompt  string
	reload  func() ([]any, error)
	reloads <-chan struct{}

	items   []any
	query   []rune
	results []search.Result
	sel     int
	offset  int
	status  string
}

// New builds a Picker.
func New(opts Options) (*Picker, error) {
	if opts.Stream == nil {
		return nil, errors.New("picker: stream searcher required")
	}

	screen := opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		screen = s
	}

	line := opts.Line
	if line == nil {
		line = defaultLine
	}

	prompt := opts.Prompt
	if prompt == "" {
		prompt = "> "
	}

	return &Picker{
		screen:  screen,
		stream:  opts.Stream,
		line:    line,
		prompt:  prompt,
		reload:  opts.Reload,
		reloads: opts.Reloads,
		items:   opts.Items,
	}, nil
}

// defaultLine shows string items as-is with their match highlights and
// renders anything else through fmt.
func defaultLine(r search.Result) (string, []int) {
	if s, ok := r.Item.(string); ok {
		return s, r.Positions
	}
	return fmt.Sprintf("%v", r.Item), nil
}

// Run drives the UI until a selection or dismissal. It initializes and
// finalizes the screen, so the caller must not touch it concurrently.
// Returns ErrAborted when the user cancels.
func (p *Picker) Run() (search.Result, error) {
	if err := p.screen.Init(); err != nil {
		return search.Result{}, err
	}
	defer p.screen.Fini()
	defer p.stream.Cancel()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go p.screen.ChannelEvents(events, quit)

	p.showAll()
	p.render()

	var pending <-chan []search.Result

	for {
		select {
		case results, ok := <-pending:
			pending = nil
			if ok {
				p.setResults(results)
				p.render()
			}

		case <-p.reloads:
			if p.reload == nil {
				continue
			}
			items, err := p.reload()
			if err != nil {
				p.status = fmt.Sprintf("reload failed: %v", err)
				p.render()
				continue
			}
			p.items = items
			p.status = ""
			p.stream.InvalidateCache()
			pending = p.research()
			p.render()

		case ev, ok := <-events:
			if !ok {
				return search.Result{}, ErrAborted
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				p.screen.Sync()
				p.render()

			case *tcell.EventKey:
				done, result, err := p.handleKey(ev, &pending)
				if done {
					return result, err
				}
				p.render()
			}
		}
	}
}

// handleKey processes one keystroke. done reports that Run should return.
func (p *Picker) handleKey(ev *tcell.EventKey, pending *<-chan []search.Result) (bool, search.Result, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, search.Result{}, ErrAborted

	case tcell.KeyEnter:
		if p.sel >= 0 && p.sel < len(p.results) {
			return true, p.results[p.sel], nil
		}
		return true, search.Result{}, ErrAborted

	case tcell.KeyUp, tcell.KeyCtrlP:
		p.moveSelection(-1)

	case tcell.KeyDown, tcell.KeyCtrlN:
		p.moveSelection(1)

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.query) > 0 {
			p.query = p.query[:len(p.query)-1]
			*pending = p.research()
		}

	case tcell.KeyCtrlU:
		if len(p.query) > 0 {
			p.query = nil
			*pending = p.research()
		}

	case tcell.KeyRune:
		p.query = append(p.query, ev.Rune())
		*pending = p.research()
	}

	return false, search.Result{}, nil
}

// research starts ranking for the current query. An empty query shows
// the whole collection unranked.
func (p *Picker) research() <-chan []search.Result {
	if len(p.query) == 0 {
		p.showAll()
		return nil
	}
	return p.stream.Search(string(p.query), p.items)
}

// showAll fills the result list with every item, unscored, in input
// order.
func (p *Picker) showAll() {
	results := make([]search.Result, len(p.items))
	for i, item := range p.items {
		results[i] = search.Result{Item: item}
	}
	p.setResults(results)
}

// setResults installs a fresh ranking and moves the selection back to
// the best match.
func (p *Picker) setResults(results []search.Result) {
	p.results = results
	p.sel = 0
	p.offset = 0
}

func (p *Picker) moveSelection(delta int) {
	if len(p.results) == 0 {
		return
	}
	p.sel += delta
	if p.sel < 0 {
		p.sel = 0
	}
	if p.sel >= len(p.results) {
		p.sel = len(p.results) - 1
	}
}
