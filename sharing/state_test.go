package sharing

import (
	"sync"
	"testing"
)

func TestModelStateSnapshot(t *testing.T) {
	state := NewModelState("base.en", "/models/ggml-base.en.bin", "whisper")

	m := state.Snapshot()
	if m.Name != "base.en" || m.Path != "/models/ggml-base.en.bin" || m.Engine != "whisper" {
		t.Errorf("unexpected snapshot: %+v", m)
	}
}

func TestModelStateUpdate(t *testing.T) {
	state := NewModelState("base.en", "/models/old.bin", "whisper")
	state.Update("large-v3-turbo", "/models/new.bin", "whisper")

	m := state.Snapshot()
	if m.Name != "large-v3-turbo" {
		t.Errorf("expected large-v3-turbo, got %s", m.Name)
	}
	if m.Path != "/models/new.bin" {
		t.Errorf("expected new path, got %s", m.Path)
	}
}

// The triple must be replaced as a unit: a reader must never observe a name
// from one generation paired with a path from another.
func TestModelStateNoTearing(t *testing.T) {
	state := NewModelState("a", "path-a", "whisper")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				state.Update("a", "path-a", "whisper")
			} else {
				state.Update("b", "path-b", "parakeet")
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		m := state.Snapshot()
		if (m.Name == "a" && m.Path != "path-a") || (m.Name == "b" && m.Path != "path-b") {
			t.Fatalf("torn read: %+v", m)
		}
	}
	close(stop)
	wg.Wait()
}
