package gridimage

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

func TestRenderProducesPNG(t *testing.T) {
	grid := model.Grid{
		model.Monday: {
			model.CategoryGraduado: {
				{Weekday: model.Monday, Time: "08:00", Category: model.CategoryGraduado, Status: model.SlotStatusAvailable},
				{Weekday: model.Monday, Time: "09:00", Category: model.CategoryGraduado, Status: model.SlotStatusBooked},
			},
		},
		model.Friday: {
			model.CategoryGraduado: {
				{Weekday: model.Friday, Time: "10:30", Category: model.CategoryGraduado, Status: model.SlotStatusUnavailable},
			},
		},
	}

	data, err := Render(grid, model.CategoryGraduado, time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != imageWidth {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), imageWidth)
	}
	wantHeight := headerHeight + dayHeaderHeight + int(minRows*rowHeight) + legendHeight
	if img.Bounds().Dy() != wantHeight {
		t.Errorf("height = %d, want %d", img.Bounds().Dy(), wantHeight)
	}
}

func TestTimesOfIgnoresOtherCategories(t *testing.T) {
	grid := model.Grid{
		model.Tuesday: {
			model.CategoryGraduado: {{Time: "09:00"}, {Time: "08:00"}},
			model.CategoryOficial:  {{Time: "07:30"}},
		},
		model.Thursday: {
			model.CategoryGraduado: {{Time: "09:00"}, {Time: "11:00"}},
		},
	}

	got := timesOf(grid, model.CategoryGraduado)
	want := []model.TimeOfDay{"08:00", "09:00", "11:00"}
	if len(got) != len(want) {
		t.Fatalf("times = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("times[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
