package controller

import (
	"strings"
	"testing"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

func TestCategoriesArg(t *testing.T) {
	got, err := categoriesArg("/horarios")
	if err != nil || len(got) != len(model.Categories) {
		t.Fatalf("no argument = %v, %v", got, err)
	}

	got, err = categoriesArg("/grade  oficial")
	if err != nil || len(got) != 1 || got[0] != model.CategoryOficial {
		t.Fatalf("oficial = %v, %v", got, err)
	}

	if _, err := categoriesArg("/grade civil"); err == nil {
		t.Error("unknown category accepted")
	}
}

func TestFormatAvailable(t *testing.T) {
	grid := model.Grid{
		model.Monday: {
			model.CategoryGraduado: {
				{Time: "08:00", Status: model.SlotStatusAvailable},
				{Time: "09:00", Status: model.SlotStatusBooked},
				{Time: "10:00", Status: model.SlotStatusAvailable},
			},
		},
	}

	text := formatAvailable(grid, model.CategoryGraduado)

	if !strings.Contains(text, "segunda: 08:00, 10:00\n") {
		t.Errorf("monday line missing in %q", text)
	}
	if !strings.Contains(text, "sexta: -\n") {
		t.Errorf("empty friday line missing in %q", text)
	}
}
