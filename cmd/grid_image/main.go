// Command grid_image renders a sample weekly grid to a PNG file, for checking
// the layout without running the bot.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/controller/gridimage"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

func main() {
	out := flag.String("out", "grade.png", "output file")
	category := flag.String("category", string(model.CategoryGraduado), "GRADUADO or OFICIAL")
	flag.Parse()

	cat, err := model.ParseCategory(*category)
	if err != nil {
		log.Fatalf("Invalid category: %v", err)
	}

	data, err := gridimage.Render(sampleGrid(cat), cat, time.Now())
	if err != nil {
		log.Fatalf("Failed to render grid: %v", err)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Grid written to %s (%d bytes)", *out, len(data))
}

func sampleGrid(category model.Category) model.Grid {
	times := []model.TimeOfDay{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "13:30", "14:00", "14:30"}
	statuses := []model.SlotStatus{model.SlotStatusAvailable, model.SlotStatusAvailable, model.SlotStatusBooked, model.SlotStatusUnavailable}

	grid := make(model.Grid)
	for d, weekday := range model.Weekdays {
		slots := make([]*model.Slot, 0, len(times))
		for i, t := range times {
			slots = append(slots, &model.Slot{
				Weekday:  weekday,
				Time:     t,
				Category: category,
				Status:   statuses[(d+i)%len(statuses)],
			})
		}
		grid[weekday] = map[model.Category][]*model.Slot{category: slots}
	}
	return grid
}
