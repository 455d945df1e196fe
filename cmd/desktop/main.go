package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go6502c/pkg/compiler"
	"go6502c/pkg/cpu"
	"go6502c/pkg/grid"
	"go6502c/pkg/utils"
)

const (
	cols       = 16
	cellWidth  = 22
	cellHeight = 16
	gridWidth  = cols * cellWidth
	gridHeight = cpu.MemorySize / cols * cellHeight
	logWidth   = 420
	lineHeight = 16
)

var (
	colorEmpty  = color.RGBA{0x60, 0x60, 0x60, 0xFF}
	colorCode   = color.RGBA{0xF0, 0xF0, 0xF0, 0xFF}
	colorStatic = color.RGBA{0xF0, 0xC0, 0x40, 0xFF}
	colorHeap   = color.RGBA{0x60, 0xD0, 0x70, 0xFF}
	colorBg     = color.RGBA{0x10, 0x10, 0x18, 0xFF}
)

type Game struct {
	path    string
	verbose bool
	scroll  int

	res     *compiler.Result
	err     error
	gridImg *ebiten.Image
}

// compile reloads the source from disk and rebuilds the grid.
func (g *Game) compile() {
	src, _, err := utils.ReadSource(g.path)
	if err != nil {
		g.res, g.err = nil, err
		g.gridImg = ebiten.NewImageFromImage(renderGrid(nil))
		return
	}
	g.res, g.err = compiler.Compile(src, compiler.Options{})
	var img *compiler.Image
	if g.err == nil {
		img = g.res.Image
	}
	g.gridImg = ebiten.NewImageFromImage(renderGrid(img))
	g.scroll = 0
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.verbose = !g.verbose
		g.scroll = 0
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.compile()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyPageDown) {
		g.scroll++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyPageUp) {
		g.scroll--
	}
	if g.scroll < 0 {
		g.scroll = 0
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBg)
	if g.gridImg != nil {
		screen.DrawImage(g.gridImg, nil)
	}

	lines := logLines(g.res, g.err, g.verbose)
	visible := (gridHeight - lineHeight) / lineHeight
	if g.scroll > len(lines)-visible {
		g.scroll = max(0, len(lines)-visible)
	}
	for i, line := range lines[g.scroll:] {
		if i >= visible {
			break
		}
		ebitenutil.DebugPrintAt(screen, line, gridWidth+8, i*lineHeight)
	}

	ebitenutil.DebugPrintAt(screen, statusLine(g.path, g.verbose, g.err), 4, gridHeight+2)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return gridWidth + logWidth, gridHeight + lineHeight + 4
}

// renderGrid draws the image as a 16x16 table of hex cells coloured by
// region. A nil image renders an empty grid.
func renderGrid(img *compiler.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, gridWidth, gridHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(colorBg), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: canvas, Face: basicfont.Face7x13}
	for i := 0; i < cpu.MemorySize; i++ {
		text, col := "00", colorEmpty
		if img != nil {
			text, col = img.Cells[i].String(), regionColor(img, i)
		}
		x, y := grid.GetGridCoords(i, cols)
		d.Src = image.NewUniform(col)
		d.Dot = fixed.P(x*cellWidth+4, y*cellHeight+12)
		d.DrawString(text)
	}
	return canvas
}

func regionColor(img *compiler.Image, addr int) color.RGBA {
	switch {
	case addr < img.CodeEnd:
		return colorCode
	case addr < img.StaticEnd:
		return colorStatic
	case addr >= img.Heap:
		return colorHeap
	}
	return colorEmpty
}

// logLines formats the compilation log for display.
func logLines(res *compiler.Result, err error, verbose bool) []string {
	var lines []string
	if res != nil {
		for _, e := range res.Log.Filter(verbose) {
			lines = append(lines, e.String())
		}
	}
	if err != nil {
		lines = append(lines, "", "ERROR: "+err.Error())
	}
	return lines
}

func statusLine(path string, verbose bool, err error) string {
	state := "ok"
	if err != nil {
		state = "failed"
	}
	return fmt.Sprintf("%s [%s]  V: verbose %t  R: reload  Up/Down: scroll", path, state, verbose)
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <source file>", os.Args[0])
	}

	fullPath, _, err := utils.GetPathInfo(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to resolve source path: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(2*(gridWidth+logWidth), 2*(gridHeight+lineHeight+4))
	ebiten.SetWindowTitle("go6502c")

	game := &Game{path: fullPath}
	game.compile()
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
