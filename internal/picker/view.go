package picker

import "github.com/gdamore/tcell/v2"

// Styles for the three row states.
var (
	styleDefault   = tcell.StyleDefault
	stylePrompt    = tcell.StyleDefault.Bold(true)
	styleSelected  = tcell.StyleDefault.Reverse(true)
	styleHighlight = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// render draws the prompt line and the visible window of results.
func (p *Picker) render() {
	p.screen.Clear()
	width, height := p.screen.Size()
	if width == 0 || height == 0 {
		p.screen.Show()
		return
	}

	p.drawPrompt(width)

	listHeight := height - 1
	if p.status != "" {
		listHeight--
		drawText(p.screen, 0, height-1, width, p.status, styleStatus)
	}
	if listHeight < 0 {
		listHeight = 0
	}

	p.scrollTo(listHeight)

	for row := 0; row < listHeight; row++ {
		idx := p.offset + row
		if idx >= len(p.results) {
			break
		}
		p.drawResult(row+1, width, idx)
	}

	p.screen.ShowCursor(len([]rune(p.prompt))+len(p.query), 0)
	p.screen.Show()
}

// drawPrompt renders the query line.
func (p *Picker) drawPrompt(width int) {
	x := drawText(p.screen, 0, 0, width, p.prompt, stylePrompt)
	drawText(p.screen, x, 0, width, string(p.query), styleDefault)
}

// drawResult renders one result row with match highlighting.
func (p *Picker) drawResult(y, width, idx int) {
	r := p.results[idx]
	text, highlights := p.line(r)

	base := styleDefault
	if idx == p.sel {
		base = styleSelected
		// Fill the row so the selection bar spans the width.
		for x := 0; x < width; x++ {
			p.screen.SetContent(x, y, ' ', nil, base)
		}
	}

	marked := make(map[int]bool, len(highlights))
	for _, h := range highlights {
		marked[h] = true
	}

	x := 0
	for i, rn := range []rune(text) {
		if x >= width {
			break
		}
		style := base
		if marked[i] {
			style = styleHighlight
			if idx == p.sel {
				style = style.Reverse(true)
			}
		}
		p.screen.SetContent(x, y, rn, nil, style)
		x++
	}
}

// scrollTo keeps the selection inside the visible window.
func (p *Picker) scrollTo(listHeight int) {
	if listHeight <= 0 {
		return
	}
	if p.sel < p.offset {
		p.offset = p.sel
	}
	if p.sel >= p.offset+listHeight {
		p.offset = p.sel - listHeight + 1
	}
}

// drawText writes a string at (x, y), clipped to width. Returns the next
// x position.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	for _, rn := range text {
		if x >= width {
			break
		}
		s.SetContent(x, y, rn, nil, style)
		x++
	}
	return x
}
