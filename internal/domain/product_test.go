package domain

import "testing"

func TestProduct_HasColor(t *testing.T) {
	p := Product{Colors: []string{"Чёрный", "Золотой"}}

	if !p.HasColor("Золотой") {
		t.Error("Expected product to have color Золотой")
	}
	if p.HasColor("Красный") {
		t.Error("Did not expect color Красный")
	}
}

func TestProduct_HasMaterial(t *testing.T) {
	p := Product{Materials: []string{"Металл"}}

	if !p.HasMaterial("Металл") {
		t.Error("Expected product to have material Металл")
	}
	if p.HasMaterial("Пластик") {
		t.Error("Did not expect material Пластик")
	}

	empty := Product{}
	if empty.HasMaterial("Металл") {
		t.Error("Expected no materials on empty product")
	}
}
