package model

import "testing"

func TestResidenceSlots(t *testing.T) {
	r := NewResidence(1, 2)

	if got := len(r.FreeSlots()); got != ResidenceSlots {
		t.Fatalf("free slots = %d, want %d", got, ResidenceSlots)
	}

	r.SetSlot(0, 100)
	r.SetSlot(3, 101)
	if got := len(r.FreeSlots()); got != ResidenceSlots-2 {
		t.Fatalf("free slots = %d, want %d", got, ResidenceSlots-2)
	}
	if !r.HasCar(100) || !r.HasCar(101) {
		t.Fatalf("residence should report both cars as out")
	}
	if !r.Busy() {
		t.Fatalf("residence with cars out should be busy")
	}
}

func TestResidenceClearAndReplace(t *testing.T) {
	r := NewResidence(1, 2)
	r.SetSlot(0, 100)

	if !r.ReplaceCar(100, 200) {
		t.Fatalf("ReplaceCar should find car 100")
	}
	if r.HasCar(100) || !r.HasCar(200) {
		t.Fatalf("slot should now hold 200, slots=%v", r.Slots)
	}

	if r.ClearCar(100) {
		t.Fatalf("ClearCar of an unknown id should report false")
	}
	if !r.ClearCar(200) {
		t.Fatalf("ClearCar should clear car 200")
	}
	if r.Busy() {
		t.Fatalf("residence should be idle after clearing its only car")
	}
}
