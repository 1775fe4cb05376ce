// Package gridimage draws the weekly slot grid of one category as a PNG.
package gridimage

import (
	"bytes"
	"fmt"
	"image/color"
	"sort"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	imageWidth       = 1000
	headerHeight     = 90
	dayHeaderHeight  = 40
	leftLabelsWidth  = 80
	legendHeight     = 50
	rowHeight        = 34.0
	dayPaddingX      = 8
	slotBorderRadius = 6.0
	shadowOffset     = 2.0
	minRows          = 4
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 255}
	hourLabelColor = color.RGBA{110, 115, 120, 255}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 90}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{228, 228, 228, 255}

	slotAvailableColor   = color.RGBA{133, 193, 85, 230}
	slotBookedColor      = color.RGBA{255, 182, 193, 255}
	slotUnavailableColor = color.RGBA{158, 158, 158, 220}
	slotTextColor        = color.RGBA{20, 24, 28, 230}
	slotBookedTextColor  = color.RGBA{120, 40, 50, 255}
	slotShadowColor      = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 230}
)

// basicfont has ASCII glyphs only.
var months = [...]string{
	"janeiro", "fevereiro", "marco", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Render draws the grid of category for the week containing now. The
// current weekday column is highlighted.
func Render(grid model.Grid, category model.Category, now time.Time) ([]byte, error) {
	times := timesOf(grid, category)
	rows := len(times)
	if rows < minRows {
		rows = minRows
	}

	gridHeight := float64(rows) * rowHeight
	height := headerHeight + dayHeaderHeight + int(gridHeight) + legendHeight
	dayWidth := (imageWidth - leftLabelsWidth - dayPaddingX) / len(model.Weekdays)

	dc := gg.NewContext(imageWidth, height)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	weekStart := model.WeekStart(now)
	today, isWeekday := model.WeekdayOf(now)

	drawHeader(dc, category, weekStart)
	drawTimeLabels(dc, times)

	for i, weekday := range model.Weekdays {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeaderHeight+gridHeight, i, isWeekday && weekday == today)
		drawDayHeader(dc, weekday, weekStart.AddDate(0, 0, i), x, y, dayWidth)
		drawRowLines(dc, x, y+dayHeaderHeight, dayWidth, rows)

		bySlot := make(map[model.TimeOfDay]*model.Slot)
		for _, s := range grid[weekday][category] {
			bySlot[s.Time] = s
		}
		for row, t := range times {
			if s, ok := bySlot[t]; ok {
				drawSlot(dc, s, x, y+dayHeaderHeight+float64(row)*rowHeight, dayWidth)
			}
		}
	}

	drawLegend(dc, float64(height-legendHeight))

	return encodeImage(dc)
}

// timesOf returns the sorted union of times used by category on any day.
func timesOf(grid model.Grid, category model.Category) []model.TimeOfDay {
	seen := make(map[model.TimeOfDay]struct{})
	for _, row := range grid {
		for _, s := range row[category] {
			seen[s.Time] = struct{}{}
		}
	}
	out := make([]model.TimeOfDay, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func drawHeader(dc *gg.Context, category model.Category, weekStart time.Time) {
	title := fmt.Sprintf("Horarios %s - semana de %02d de %s", category, weekStart.Day(), months[weekStart.Month()-1])

	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, float64(imageWidth)/2, float64(headerHeight)/2, 0.5, 0.5)
}

func drawTimeLabels(dc *gg.Context, times []model.TimeOfDay) {
	dc.SetColor(hourLabelColor)
	top := float64(headerHeight + dayHeaderHeight)
	for i, t := range times {
		y := top + float64(i)*rowHeight + rowHeight/2
		dc.DrawStringAnchored(string(t), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth int, height float64, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), height)
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, weekday model.Weekday, date time.Time, x, y float64, dayWidth int) {
	dc.SetColor(textColor)
	cx := x + float64(dayWidth)/2
	dc.DrawStringAnchored(weekday.Short(), cx, y+12, 0.5, 0.5)
	dc.DrawStringAnchored(date.Format("02/01"), cx, y+28, 0.5, 0.5)
}

func drawRowLines(dc *gg.Context, x, y float64, dayWidth, rows int) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= rows; i++ {
		ly := y + float64(i)*rowHeight
		dc.DrawLine(x, ly, x+float64(dayWidth), ly)
		dc.Stroke()
	}
}

func drawSlot(dc *gg.Context, slot *model.Slot, x, y float64, dayWidth int) {
	fill := slotColor(slot.Status)
	w := float64(dayWidth - dayPaddingX*2)
	h := rowHeight - 6

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, y+3+shadowOffset, w, h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+3, w, h, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+3, w, h, slotBorderRadius)
	dc.Stroke()

	txt := slotTextColor
	if slot.Status == model.SlotStatusBooked {
		txt = slotBookedTextColor
	}
	dc.SetColor(txt)
	dc.DrawStringAnchored(string(slot.Time), x+dayPaddingX+w/2, y+3+h/2, 0.5, 0.5)
}

func slotColor(status model.SlotStatus) color.RGBA {
	switch status {
	case model.SlotStatusAvailable:
		return slotAvailableColor
	case model.SlotStatusBooked:
		return slotBookedColor
	default:
		return slotUnavailableColor
	}
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawLegend(dc *gg.Context, top float64) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Disponivel", slotAvailableColor},
		{"Agendado", slotBookedColor},
		{"Indisponivel", slotUnavailableColor},
	}

	const boxW, boxH = 20.0, 14.0
	x := float64(leftLabelsWidth)
	y := top + (legendHeight-boxH)/2

	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, y+boxH/2, 0, 0.5)
		x += boxW + 8 + float64(len(item.label))*7 + 30
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
