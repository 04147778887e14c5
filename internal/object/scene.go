package object

// Scene holds a renderer's objects. Objects spawned during Update join the
// scene at the end of that update.
type Scene struct {
	objects []Object
	spawned []Object
}

// Add puts obj into the scene immediately.
func (s *Scene) Add(obj Object) {
	s.objects = append(s.objects, obj)
}

// Spawn queues obj to join after the current update.
func (s *Scene) Spawn(obj Object) {
	s.spawned = append(s.spawned, obj)
}

// Len returns the number of objects in the scene.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Update advances every object, drops and releases the ones that ask to be
// removed, then adds whatever was spawned.
func (s *Scene) Update(ctx UpdateContext) error {
	ctx.Spawner = s
	kept := s.objects[:0]
	for _, obj := range s.objects {
		remove, err := obj.Update(ctx)
		if err != nil {
			return err
		}
		if remove {
			ReleaseObject(obj)
			continue
		}
		kept = append(kept, obj)
	}
	clear(s.objects[len(kept):])
	s.objects = append(kept, s.spawned...)
	clear(s.spawned)
	s.spawned = s.spawned[:0]
	return nil
}

// Draw draws every object in insertion order.
func (s *Scene) Draw(ctx DrawContext) error {
	for _, obj := range s.objects {
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	return nil
}
