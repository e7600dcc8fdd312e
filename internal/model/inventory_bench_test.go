package model

import "testing"

// --- helpers ---

func benchInventory(size int) (*Inventory, *IDGenerator) {
	gen := NewIDGenerator()
	inv, err := NewInventory(FixedCapacity(size), gen)
	if err != nil {
		panic(err)
	}
	return inv, gen
}

func benchInstance(gen *IDGenerator, templateID int32, count int32) *ItemInstance {
	tmpl := &ItemTemplate{
		ID:       templateID,
		Name:     "BenchItem",
		Category: CategoryMaterial,
		MaxStack: 100,
		Weight:   10,
	}
	inst, err := NewItemInstance(gen.NextID(), tmpl, count)
	if err != nil {
		panic(err)
	}
	return inst
}

func BenchmarkInventory_Add_NewSlots(b *testing.B) {
	inv, gen := benchInventory(b.N + 1)
	items := make([]*ItemInstance, b.N)
	for i := range b.N {
		items[i] = benchInstance(gen, int32(i+1), 1)
	}

	b.ResetTimer()
	for i := range b.N {
		if _, err := inv.Add(items[i]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInventory_Add_MergeIntoStacks(b *testing.B) {
	gen := NewIDGenerator()
	inv, err := NewInventory(UnboundedCapacity(), gen)
	if err != nil {
		b.Fatal(err)
	}
	items := make([]*ItemInstance, b.N)
	for i := range b.N {
		items[i] = benchInstance(gen, 1, 1)
	}

	b.ResetTimer()
	for i := range b.N {
		if _, err := inv.Add(items[i]); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInventory_CountOf(b *testing.B) {
	inv, gen := benchInventory(200)
	for i := range 200 {
		if _, err := inv.Add(benchInstance(gen, int32(i%10+1), 50)); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for range b.N {
		_ = inv.CountOf(5)
	}
}

func BenchmarkInventory_Find(b *testing.B) {
	inv, gen := benchInventory(200)
	var lastID uint32
	for i := range 200 {
		inst := benchInstance(gen, int32(i+1), 1)
		if _, err := inv.Add(inst); err != nil {
			b.Fatal(err)
		}
		lastID = inst.InstanceID()
	}

	b.ResetTimer()
	for range b.N {
		_, _, _ = inv.Find(lastID)
	}
}
