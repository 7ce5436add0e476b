// FILE: internal/board/ascii.go
package board

import (
	"fmt"
	"strings"

	"meridian/internal/card"
)

const (
	hiddenCell = "##"
	emptyCell  = "--"
)

// ToASCII creates a plain-text representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder

	waste := emptyCell
	if top, ok := b.WasteTop(); ok {
		waste = top.String()
	}
	sb.WriteString(fmt.Sprintf("Stock: %-3d Waste: %-4s Pockets:", len(b.Stock), waste))
	for j := 0; j < b.PocketCount && j < MaxPockets; j++ {
		p := emptyCell
		if c, ok := b.Pocket(j); ok {
			p = c.String()
		}
		sb.WriteString(fmt.Sprintf(" [%s]", p))
	}
	sb.WriteString("\n")

	for _, g := range Groups {
		sb.WriteString(fmt.Sprintf("%-5s", g.String()))
		for _, s := range card.Suits {
			top := emptyCell
			if c, ok := b.Foundations.Top(g, s); ok {
				top = c.String()
			}
			sb.WriteString(fmt.Sprintf(" %c:%-4s", s, top))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	height := 0
	for i := 0; i < Columns; i++ {
		sb.WriteString(fmt.Sprintf(" t%d  ", i))
		if n := b.Tableau[i].Len(); n > height {
			height = n
		}
	}
	sb.WriteString("\n")

	for r := 0; r < height; r++ {
		for i := 0; i < Columns; i++ {
			col := b.Tableau[i]
			cell := ""
			switch {
			case r >= col.Len():
				cell = ""
			case r < col.FaceDown:
				cell = hiddenCell
			default:
				cell = col.Cards[r].String()
			}
			sb.WriteString(fmt.Sprintf(" %-4s", cell))
		}
		sb.WriteString("\n")
	}
	if height == 0 {
		sb.WriteString(strings.Repeat(" "+emptyCell+"  ", Columns))
		sb.WriteString("\n")
	}

	return sb.String()
}
